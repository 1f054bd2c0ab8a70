// Package domain contains core concepts of the chat bridge.
// This file defines Participant entities and related invariants.
package domain

type RoomID string

// Participant is one live connection inside at most one room.
// It exists only between join and disconnect and is never persisted.
type Participant struct {
	ConnectionID string
	Language     Language
	Room         RoomID
}
