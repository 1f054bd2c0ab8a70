// Package runtime handles membership, fan-out, and delivery scheduling.
// It orchestrates the system without containing transport or provider logic.
package runtime

import (
	"chat-bridge/contract"
	"chat-bridge/domain"
	"sync"
)

type Set map[string]struct{}

// Registry is the single source of truth for room membership.
// All mutations happen under the mutex so that concurrent joins and
// leaves to the same room always produce an exact participant count.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.Member // connectionID -> participant + sink
	roomMembers map[domain.RoomID]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.Member),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// Join registers a connection into a room, creating the room on first use,
// and returns the updated live participant count. A connection belongs to
// at most one room: re-joining moves it out of its previous room first.
func (r *Registry) Join(roomID domain.RoomID, connectionID string, language domain.Language, sink contract.EventSink) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[connectionID]; ok {
		r.removeLocked(connectionID, existing.Participant.Room)
	}

	r.sessions[connectionID] = contract.Member{
		Participant: domain.Participant{
			ConnectionID: connectionID,
			Language:     language,
			Room:         roomID,
		},
		Sink: sink,
	}

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][connectionID] = struct{}{}

	return len(r.roomMembers[roomID])
}

// Leave removes the connection from whatever room holds it, found by
// reverse lookup, and reports the room with its remaining count.
// Calling Leave for an unknown connection is a no-op, not an error.
func (r *Registry) Leave(connectionID string) (domain.RoomID, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.sessions[connectionID]
	if !ok {
		return "", 0, false
	}

	roomID := member.Participant.Room
	r.removeLocked(connectionID, roomID)

	return roomID, len(r.roomMembers[roomID]), true
}

// removeLocked deletes the session and its room membership.
// The room entry itself is removed once empty to prevent leaks.
func (r *Registry) removeLocked(connectionID string, roomID domain.RoomID) {
	delete(r.sessions, connectionID)

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connectionID)

		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
}

// ParticipantsOf returns the current members of a room for a single
// dispatch. The snapshot reflects every join and leave completed before
// this call. Returns nil if the room doesn't exist.
func (r *Registry) ParticipantsOf(roomID domain.RoomID) []contract.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var active []contract.Member
	for connectionID := range members {
		if member, exists := r.sessions[connectionID]; exists {
			active = append(active, member)
		}
	}
	return active
}

// Counts reports the number of live rooms and participants for telemetry.
func (r *Registry) Counts() (rooms, participants int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers), len(r.sessions)
}
