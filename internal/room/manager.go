package room

import (
	"log/slog"
	"sync"

	"github.com/ugaemi/roomrelay/internal/ws"
)

// Manager manages all active rooms.
type Manager struct {
	rooms map[string]*Room // code -> room
	mu    sync.RWMutex

	maxCodeAttempts int
	newCode         func() string
}

// NewManager creates a new room manager. maxCodeAttempts bounds code
// generation retries; values below 1 fall back to DefaultMaxCodeAttempts.
func NewManager(maxCodeAttempts int) *Manager {
	if maxCodeAttempts < 1 {
		maxCodeAttempts = DefaultMaxCodeAttempts
	}
	return &Manager{
		rooms:           make(map[string]*Room),
		maxCodeAttempts: maxCodeAttempts,
		newCode:         randomCode,
	}
}

// CreateRoom creates a lobby-phase room whose only member, a new player
// named displayName on client, is the host.
func (m *Manager) CreateRoom(displayName string, client *ws.Client) (*Room, *Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := generateCode(func(c string) bool {
		_, exists := m.rooms[c]
		return exists
	}, m.maxCodeAttempts, m.newCode)
	if err != nil {
		return nil, nil, err
	}

	room := NewRoom(code)
	player := NewPlayer(displayName, client)
	// A fresh room is never full or started.
	_ = room.AddPlayer(player, 1)
	m.rooms[code] = room

	slog.Info("room created", "code", code)
	return room, player, nil
}

// GetRoom returns a room by its code, ignoring case. It returns nil when no
// such room exists.
func (m *Manager) GetRoom(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[NormalizeCode(code)]
}

// RemoveRoom removes a room by its code.
func (m *Manager) RemoveRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
	slog.Info("room removed", "code", code)
}

// RoomCount returns the number of active rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
