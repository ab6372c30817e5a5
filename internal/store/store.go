package store

import (
	"context"
	"time"
)

// Event kinds recorded in the journal.
const (
	KindRoomCreated        = "room_created"
	KindPlayerJoined       = "player_joined"
	KindPlayerLeft         = "player_left"
	KindPlayerDisconnected = "player_disconnected"
	KindPlayerReconnected  = "player_reconnected"
	KindHostChanged        = "host_changed"
	KindGameStarted        = "game_started"
	KindRoomClosed         = "room_closed"
)

// RoomEvent is one entry of a room's activity history.
type RoomEvent struct {
	RoomCode  string
	Kind      string
	PlayerID  string
	Detail    string
	CreatedAt time.Time
}

// EventStore defines the interface for durable room activity storage.
type EventStore interface {
	// Append writes one event.
	Append(ctx context.Context, ev RoomEvent) error
	// Close releases database resources.
	Close() error
}

// Journal accepts events without blocking the caller.
type Journal interface {
	Record(ev RoomEvent)
}

// Discard is a Journal that drops every event.
var Discard Journal = discard{}

type discard struct{}

func (discard) Record(RoomEvent) {}
