// Package domain contains core concepts of the chat bridge.
// This file defines the closed set of supported language codes.
// No runtime, network, or UI logic should be added here.
package domain

import "chat-bridge/errors"

type Language string

const (
	English    Language = "en"
	Portuguese Language = "pt"
)

// ParseLanguage maps a wire language code onto the closed set.
// Anything outside the set is rejected, never passed through.
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case English, Portuguese:
		return Language(code), nil
	default:
		return "", errors.ErrUnknownLanguage
	}
}

// Name returns the natural-language name used in translation prompts.
func (l Language) Name() string {
	switch l {
	case Portuguese:
		return "Portuguese"
	default:
		return "English"
	}
}
