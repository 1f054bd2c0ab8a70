package ws

import (
	"chat-bridge/domain/event"
	"context"
)

// Sink bridges fan-out deliveries to one connection's write loop.
type Sink struct {
	Events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the dispatcher and by membership broadcasts.
// It hands the event to the owning connection's write loop and never
// blocks the caller: a full buffer means the recipient is too slow or
// already gone, and the delivery becomes a no-op.
func (s *Sink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
	default:
	}
	return nil
}
