// Package domain contains core concepts of the chat bridge.
// This file defines Message events and related rules.
// Messages are ephemeral: they exist only for the duration of fan-out.
package domain

import "time"

// Message is an inbound chat message as accepted by the server.
// The ID is client-supplied when present, server-generated otherwise.
type Message struct {
	ID             string
	Original       string
	SourceLanguage Language
	CreatedAt      time.Time
}

// DeliveredMessage is the per-recipient projection of a Message.
// Delivered equals Original when no translation was needed, the
// translated text on success, or a marked fallback on failure.
type DeliveredMessage struct {
	ID        string
	Original  string
	Delivered string
	CreatedAt time.Time
}
