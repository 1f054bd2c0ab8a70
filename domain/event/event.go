package event

import (
	"chat-bridge/domain"
	"time"
)

type DomainEvent interface {
	RoomID() domain.RoomID
}

// UserJoined is broadcast to the existing members of a room when a
// new participant registers, never to the joiner itself.
type UserJoined struct {
	UserID     string
	Language   domain.Language
	UsersCount int
	Room       domain.RoomID
}

func (e UserJoined) RoomID() domain.RoomID {
	return e.Room
}

// UserLeft is broadcast to the remaining members of a room after a
// disconnect. An emptied room has no recipients, so no event is emitted.
type UserLeft struct {
	UserID     string
	UsersCount int
	Room       domain.RoomID
}

func (e UserLeft) RoomID() domain.RoomID {
	return e.Room
}

// MessageDelivered carries one recipient's language-appropriate copy of a
// message. Recipients with differing languages receive different payloads
// for the same logical message, so the event is pushed to a single sink.
type MessageDelivered struct {
	ID         string
	Original   string
	Translated string
	At         time.Time
	Room       domain.RoomID
}

func (e MessageDelivered) RoomID() domain.RoomID {
	return e.Room
}
