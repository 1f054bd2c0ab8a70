//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-bridge/domain"
	"chat-bridge/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Member pairs a participant with its live connection sink.
// It is only valid for the duration of a single dispatch; the registry
// remains the source of truth for membership.
type Member struct {
	Participant domain.Participant
	Sink        EventSink
}

type IRegistry interface {
	// Join registers the connection into the room, creating the room when
	// absent, and returns the updated live participant count.
	Join(roomID domain.RoomID, connectionID string, language domain.Language, sink EventSink) int
	// Leave removes the connection from whatever room holds it and reports
	// the room and its remaining count. Unknown connections are a no-op.
	Leave(connectionID string) (domain.RoomID, int, bool)
	ParticipantsOf(roomID domain.RoomID) []Member
}

type ITranslator interface {
	Translate(ctx context.Context, text string, from, to domain.Language) (string, error)
}

type IDispatcher interface {
	Dispatch(msg domain.Message, senderID string, roomID domain.RoomID)
}
