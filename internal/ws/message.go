package ws

import "encoding/json"

// Message represents a WebSocket message with type-based routing.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types - inbound
const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeReconnect   = "reconnect"
	TypeLeaveRoom   = "leave_room"
	TypeStartGame   = "start_game"
	TypeGameMessage = "game_message"
	TypeChatMessage = "chat_message"
	TypePing        = "ping"
)

// Message types - replies to the requesting connection
const (
	TypeRoomCreated     = "room_created"
	TypeRoomJoined      = "room_joined"
	TypeRoomLeft        = "room_left"
	TypeReconnected     = "reconnected"
	TypeReconnectFailed = "reconnect_failed"
	TypePong            = "pong"
	TypeError           = "error"
)

// Message types - room broadcasts
const (
	TypePlayerJoined       = "player_joined"
	TypePlayerLeft         = "player_left"
	TypePlayerDisconnected = "player_disconnected"
	TypePlayerReconnected  = "player_reconnected"
	TypeHostChanged        = "host_changed"
	TypeGameStarted        = "game_started"
)

// ErrorMessage is the payload of error and reconnect_failed messages.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage creates a Message with an error payload.
func NewErrorMessage(code, msg string) Message {
	return newError(TypeError, code, msg)
}

// NewReconnectFailed creates a reconnect_failed Message.
func NewReconnectFailed(code, msg string) Message {
	return newError(TypeReconnectFailed, code, msg)
}

func newError(msgType, code, msg string) Message {
	data, _ := json.Marshal(ErrorMessage{Code: code, Message: msg})
	return Message{Type: msgType, Data: data}
}

// NewMessage creates a Message with a typed payload.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Data: data}, nil
}
