package ws

import (
	"chat-bridge/contract"
	"chat-bridge/domain"
	"chat-bridge/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session owns one connection's lifecycle: Disconnected -> Joined.
// Inbound frames are handled by a single read loop, so a connection's
// own events are always processed in arrival order. The write loop
// drains the sink back to the client; separating the two avoids
// head-of-line blocking when a client is slow.
type Session struct {
	id         string
	conn       *websocket.Conn
	sink       *Sink
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	validate   *validator.Validate
	log        *slog.Logger

	joined   bool
	room     domain.RoomID
	language domain.Language
}

func newSession(conn *websocket.Conn, registry contract.IRegistry,
	dispatcher contract.IDispatcher, validate *validator.Validate,
	log *slog.Logger, bufferSize int) *Session {
	return &Session{
		id:         uuid.NewString(),
		conn:       conn,
		sink:       NewSink(bufferSize),
		registry:   registry,
		dispatcher: dispatcher,
		validate:   validate,
		log:        log,
	}
}

// run blocks until the client disconnects. Cleanup happens exactly once,
// when the read loop observes the closed connection.
func (s *Session) run(ctx context.Context) {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writeLoop(connCtx)
	s.readLoop(connCtx)

	s.disconnect(ctx)
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.conn.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("Read loop finished", "connection_id", s.id, "error", err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Debug("Dropping unparseable frame", "connection_id", s.id, "error", err)
			continue
		}

		switch env.Event {
		case EventJoinRoom:
			s.handleJoin(ctx, env.Data)
		case EventSendMessage:
			s.handleSend(env.Data)
		default:
			s.log.Debug("Unknown event", "connection_id", s.id, "event", env.Event)
		}
	}
}

// handleJoin validates the payload, registers the participant, and
// notifies the room's other members with the new live count. The joiner
// gets no explicit ack: the established connection is its confirmation.
func (s *Session) handleJoin(ctx context.Context, data json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.log.Debug("Dropping malformed join", "connection_id", s.id, "error", err)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		s.log.Debug("Dropping invalid join", "connection_id", s.id, "error", err)
		return
	}

	language, err := domain.ParseLanguage(payload.Language)
	if err != nil {
		s.log.Debug("Dropping join with unknown language", "connection_id", s.id, "language", payload.Language)
		return
	}

	roomID := domain.RoomID(payload.RoomCode)
	usersCount := s.registry.Join(roomID, s.id, language, s.sink)
	s.joined = true
	s.room = roomID
	s.language = language

	s.log.Info(fmt.Sprintf("User %s joined room %s with language %s", s.id, roomID, language))

	s.broadcast(ctx, event.UserJoined{
		UserID:     s.id,
		Language:   language,
		UsersCount: usersCount,
		Room:       roomID,
	})
}

// handleSend delegates a message to the dispatcher. Sends while not
// joined fail closed: silently ignored, never fatal.
func (s *Session) handleSend(data json.RawMessage) {
	if !s.joined {
		s.log.Debug("Dropping message sent before join", "connection_id", s.id)
		return
	}

	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.log.Debug("Dropping malformed message", "connection_id", s.id, "error", err)
		return
	}
	if payload.Message.Original == "" {
		s.log.Debug("Dropping empty message", "connection_id", s.id)
		return
	}

	// The session, not the payload, is authoritative for room and
	// language; client-supplied translated/sender fields are discarded.
	msg := domain.Message{
		ID:             payload.Message.ID,
		Original:       payload.Message.Original,
		SourceLanguage: s.language,
		CreatedAt:      parseTimestamp(payload.Message.Timestamp),
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	s.dispatcher.Dispatch(msg, s.id, s.room)
}

// disconnect runs the registry cleanup and tells the remaining members.
// An emptied room leaves no registry trace and nobody to notify.
func (s *Session) disconnect(ctx context.Context) {
	roomID, remaining, ok := s.registry.Leave(s.id)
	if !ok {
		return
	}

	s.log.Info(fmt.Sprintf("User %s disconnected from room %s", s.id, roomID))

	if remaining > 0 {
		s.broadcast(ctx, event.UserLeft{
			UserID:     s.id,
			UsersCount: remaining,
			Room:       roomID,
		})
	}
}

// broadcast pushes a membership event to every room member except this
// session. Message fan-out goes through the dispatcher, not here.
func (s *Session) broadcast(ctx context.Context, evt event.DomainEvent) {
	for _, member := range s.registry.ParticipantsOf(evt.RoomID()) {
		if member.Participant.ConnectionID == s.id {
			continue
		}
		if err := member.Sink.Consume(ctx, evt); err != nil {
			s.log.Debug("Member unreachable for membership event",
				"connection_id", member.Participant.ConnectionID,
				"error", err)
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	defer s.conn.Close()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case evt := <-s.sink.Events:
			env, ok := s.toEnvelope(evt)
			if !ok {
				continue
			}
			if err := s.conn.WriteJSON(env); err != nil {
				s.log.Debug("Write loop finished", "connection_id", s.id, "error", err)
				return
			}
		}
	}
}

// toEnvelope maps a domain event onto its wire frame.
func (s *Session) toEnvelope(evt event.DomainEvent) (Envelope, bool) {
	var (
		env Envelope
		err error
	)

	switch e := evt.(type) {
	case event.UserJoined:
		env, err = newEnvelope(EventUserJoined, UserJoinedPayload{
			UserID:     e.UserID,
			Language:   string(e.Language),
			UsersCount: e.UsersCount,
		})
	case event.UserLeft:
		env, err = newEnvelope(EventUserLeft, UserLeftPayload{
			UserID:     e.UserID,
			UsersCount: e.UsersCount,
		})
	case event.MessageDelivered:
		env, err = newEnvelope(EventReceiveMessage, ReceiveMessagePayload{
			ID:         e.ID,
			Original:   e.Original,
			Translated: e.Translated,
			Sender:     "other",
			Timestamp:  e.At.UTC().Format(time.RFC3339Nano),
		})
	default:
		s.log.Debug("Unmapped domain event", "connection_id", s.id)
		return Envelope{}, false
	}

	if err != nil {
		s.log.Error("Failed to encode frame", "connection_id", s.id, "error", err)
		return Envelope{}, false
	}
	return env, true
}

// parseTimestamp accepts the client's RFC3339 timestamp and falls back
// to server time when absent or unparseable.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Now().UTC()
	}
	return ts
}
