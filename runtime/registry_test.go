package runtime

import (
	"chat-bridge/domain"
	"chat-bridge/domain/event"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Join_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	roomID := domain.RoomID("abc")
	sink := Sink{}

	// Given no user is connected
	// And no room exists
	rooms, participants := registry.Counts()
	req.Zero(rooms)
	req.Zero(participants)

	// When a participant joins a room
	count := registry.Join(roomID, connectionID, domain.English, sink)

	// Then the live count is reported
	req.Equal(1, count)

	members := registry.ParticipantsOf(roomID)
	req.Len(members, 1)
	req.Equal(connectionID, members[0].Participant.ConnectionID)
	req.Equal(domain.English, members[0].Participant.Language)
	req.Equal(roomID, members[0].Participant.Room)
}

func TestRegistry_Join_One_Room_Multiple_Participants(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID1 := uuid.NewString()
	connectionID2 := uuid.NewString()
	roomID := domain.RoomID("abc")

	// When participants join a room
	count1 := registry.Join(roomID, connectionID1, domain.English, Sink{})
	count2 := registry.Join(roomID, connectionID2, domain.Portuguese, Sink{})

	// Then each join reports the exact live count
	req.Equal(1, count1)
	req.Equal(2, count2)
	req.Len(registry.ParticipantsOf(roomID), 2)
}

func TestRegistry_Leave_Last_Participant_Removes_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	roomID := domain.RoomID("abc")

	// Given a participant joined a room
	registry.Join(roomID, connectionID, domain.English, Sink{})

	// When the participant leaves
	leftRoom, remaining, ok := registry.Leave(connectionID)

	// Then the leave is confirmed with no members left
	req.True(ok)
	req.Equal(roomID, leftRoom)
	req.Zero(remaining)

	// And the empty room leaves no registry trace
	req.Nil(registry.ParticipantsOf(roomID))
	rooms, participants := registry.Counts()
	req.Zero(rooms)
	req.Zero(participants)
}

func TestRegistry_Leave_One_Room_Multiple_Participants(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID1 := uuid.NewString()
	connectionID2 := uuid.NewString()
	roomID := domain.RoomID("abc")

	// Given two participants joined the same room
	registry.Join(roomID, connectionID1, domain.English, Sink{})
	registry.Join(roomID, connectionID2, domain.Portuguese, Sink{})

	// When one participant leaves
	leftRoom, remaining, ok := registry.Leave(connectionID1)

	// Then only one participant is left
	req.True(ok)
	req.Equal(roomID, leftRoom)
	req.Equal(1, remaining)

	members := registry.ParticipantsOf(roomID)
	req.Len(members, 1)
	req.Equal(connectionID2, members[0].Participant.ConnectionID)
}

func TestRegistry_Leave_Unknown_Connection_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When an unregistered connection leaves
	_, _, ok := registry.Leave(uuid.NewString())

	// Then nothing happened and no error surfaced
	req.False(ok)
	rooms, participants := registry.Counts()
	req.Zero(rooms)
	req.Zero(participants)
}

func TestRegistry_Rejoin_Moves_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()

	// Given a participant in room "abc"
	registry.Join(domain.RoomID("abc"), connectionID, domain.English, Sink{})

	// When it joins room "xyz"
	count := registry.Join(domain.RoomID("xyz"), connectionID, domain.English, Sink{})

	// Then it belongs to exactly one room
	req.Equal(1, count)
	req.Nil(registry.ParticipantsOf(domain.RoomID("abc")))
	req.Len(registry.ParticipantsOf(domain.RoomID("xyz")), 1)
}

func TestRegistry_Concurrent_Joins_Count_Exactly(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.RoomID("abc")
	const joins = 50

	// When many participants join the same room concurrently
	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Join(roomID, uuid.NewString(), domain.English, Sink{})
		}()
	}
	wg.Wait()

	// Then every join is reflected, never double-counted or dropped
	req.Len(registry.ParticipantsOf(roomID), joins)
}
