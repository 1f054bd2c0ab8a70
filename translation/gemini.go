// Package translation adapts the external translation provider behind
// the contract.ITranslator capability. The provider is treated as
// unreliable: any shape deviation, timeout, or non-success status is a
// failure for the caller to recover from, never a crash.
package translation

import (
	"bytes"
	"chat-bridge/domain"
	"chat-bridge/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

const systemPrompt = `You are a professional translator. Translate the following text naturally and contextually from
%s to %s.
Focus on conveying the meaning and emotion rather than word-for-word translation.
Keep the tone and personality of the original message intact. Only return the translated text, nothing else.
You never provide any explanation or anything, just return the translation`

type Gemini struct {
	log      *slog.Logger
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGemini builds the provider adapter. An empty API key does not stop
// the process: every call then fails closed and deliveries fall back to
// the marked original text.
func NewGemini(log *slog.Logger, apiKey string, timeout time.Duration) *Gemini {
	if apiKey == "" {
		log.Warn("Translation API key is empty, every translation will fail closed")
	}
	return &Gemini{
		log:      log,
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the provider URL, used by tests.
func (g *Gemini) WithEndpoint(endpoint string) *Gemini {
	g.endpoint = endpoint
	return g
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Translate sends one independent translation request and extracts the
// first candidate's trimmed text. No retry, no caching: the caller's
// context bounds the maximum wait.
func (g *Gemini) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	if text == "" {
		return "", errors.ErrEmptyText
	}
	if g.apiKey == "" {
		return "", errors.ErrMissingAPIKey
	}

	prompt := fmt.Sprintf(systemPrompt, from.Name(), to.Name())
	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{Parts: []part{
				{Text: fmt.Sprintf("%s\n\nText to translate: %q", prompt, text)},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translation provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", errors.ErrTranslationRejected, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedTranslation, err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.ErrMalformedTranslation
	}

	translated := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if translated == "" {
		return "", errors.ErrMalformedTranslation
	}
	return translated, nil
}
