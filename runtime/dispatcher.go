package runtime

import (
	"chat-bridge/contract"
	"chat-bridge/domain"
	"chat-bridge/domain/event"
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

// FallbackPrefix marks a delivery whose translation could not be produced.
// The original text is embedded so the message is never lost.
const FallbackPrefix = "[Translation failed] "

// Dispatcher fans a message out to every room member except the sender.
// Everything but translation is synchronous in-memory work: same-language
// copies go out inline, in the sender's arrival order. Suspension happens
// only at the translation boundary, where each recipient gets its own
// goroutine, so a slow provider never blocks other recipients or other
// connections' message processing.
type Dispatcher struct {
	log                *slog.Logger
	registry           contract.IRegistry
	translator         contract.ITranslator
	telemetry          chan event.Telemetry
	translationTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry,
	translator contract.ITranslator, telemetry chan event.Telemetry,
	translationTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:                log,
		registry:           registry,
		translator:         translator,
		telemetry:          telemetry,
		translationTimeout: translationTimeout,
	}
}

// Dispatch delivers one message to the room's current members. The
// membership snapshot lives no longer than this invocation; the registry
// stays the source of truth.
func (d *Dispatcher) Dispatch(msg domain.Message, senderID string, roomID domain.RoomID) {
	d.emit(event.Telemetry{Type: event.MessageSentType, Room: roomID})
	d.checkDeclaredLanguage(msg)

	members := d.registry.ParticipantsOf(roomID)
	recipients := lo.Filter(members, func(m contract.Member, _ int) bool {
		return m.Participant.ConnectionID != senderID
	})

	for _, recipient := range recipients {
		if recipient.Participant.Language == msg.SourceLanguage {
			// No translation call: deliver the original untouched.
			d.deliver(msg, recipient, msg.Original, roomID)
			continue
		}
		go d.translateAndDeliver(msg, recipient, roomID)
	}
}

// translateAndDeliver resolves one recipient's translated copy and pushes
// it. The per-call timeout is the mandatory maximum wait: on any failure
// the recipient still gets a marked fallback embedding the original.
func (d *Dispatcher) translateAndDeliver(msg domain.Message, m contract.Member, room domain.RoomID) {
	ctx, cancel := context.WithTimeout(context.Background(), d.translationTimeout)
	defer cancel()

	delivered, err := d.translator.Translate(ctx, msg.Original, msg.SourceLanguage, m.Participant.Language)
	if err != nil {
		d.log.Warn("Translation failed, delivering marked original",
			"room_id", room,
			"from", msg.SourceLanguage,
			"to", m.Participant.Language,
			"error", err)
		d.emit(event.Telemetry{Type: event.TranslationFailedType, Room: room})
		delivered = FallbackPrefix + msg.Original
	}

	d.deliver(msg, m, delivered, room)
}

// deliver pushes one recipient-specific copy to that recipient's sink
// only. A sink that is gone or saturated is tolerated as a no-op.
func (d *Dispatcher) deliver(msg domain.Message, m contract.Member, delivered string, room domain.RoomID) {
	evt := event.MessageDelivered{
		ID:         msg.ID,
		Original:   msg.Original,
		Translated: delivered,
		At:         msg.CreatedAt,
		Room:       room,
	}
	if err := m.Sink.Consume(context.Background(), evt); err != nil {
		d.log.Debug("Recipient unreachable, delivery skipped",
			"connection_id", m.Participant.ConnectionID,
			"room_id", room,
			"error", err)
		return
	}
	d.emit(event.Telemetry{Type: event.MessageDeliveredType, Room: room})
}

// checkDeclaredLanguage compares the sender's declared language with the
// detected one. Purely observational: the declared language always wins
// for translation decisions.
func (d *Dispatcher) checkDeclaredLanguage(msg domain.Message) {
	info := whatlanggo.Detect(msg.Original)
	detected := info.Lang.Iso6391()
	if detected == "" || detected == string(msg.SourceLanguage) {
		return
	}
	d.log.Debug("Declared language differs from detected",
		"declared", msg.SourceLanguage,
		"detected", detected)
	d.emit(event.Telemetry{Type: event.LanguageMismatchType})
}

func (d *Dispatcher) emit(t event.Telemetry) {
	select {
	case d.telemetry <- t:
	default:
		d.log.Debug("Observability telemetry event lost")
	}
}
