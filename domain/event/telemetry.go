package event

import "chat-bridge/domain"

type TelemetryType string

const (
	MessageSentType       TelemetryType = "message_sent"
	MessageDeliveredType  TelemetryType = "message_delivered"
	TranslationFailedType TelemetryType = "translation_failed"
	LanguageMismatchType  TelemetryType = "language_mismatch"
)

// Telemetry is a lossy side-channel event for observability counters.
// Losing one under load must never affect message delivery.
type Telemetry struct {
	Type TelemetryType
	Room domain.RoomID
}
