// Package ws is the websocket transport: it upgrades connections,
// runs the per-connection session state machine, and maps domain
// events onto the wire protocol's event-tagged JSON frames.
package ws

import "encoding/json"

const (
	EventJoinRoom       = "join-room"
	EventUserJoined     = "user-joined"
	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"
	EventUserLeft       = "user-left"
)

// Envelope is one event-tagged frame in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newEnvelope(eventName string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: eventName, Data: data}, nil
}

type JoinRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required"`
	Language string `json:"language" validate:"required,oneof=en pt"`
}

// MessagePayload is the client's view of a message. The translated and
// sender fields are ignored on the way in and overwritten by the server
// on the way out.
type MessagePayload struct {
	ID         string `json:"id"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Sender     string `json:"sender"`
	Timestamp  string `json:"timestamp"`
}

type SendMessagePayload struct {
	Message  MessagePayload `json:"message"`
	RoomCode string         `json:"roomCode"`
}

type UserJoinedPayload struct {
	UserID     string `json:"userId"`
	Language   string `json:"language"`
	UsersCount int    `json:"usersCount"`
}

type UserLeftPayload struct {
	UserID     string `json:"userId"`
	UsersCount int    `json:"usersCount"`
}

type ReceiveMessagePayload struct {
	ID         string `json:"id"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Sender     string `json:"sender"`
	Timestamp  string `json:"timestamp"`
}
