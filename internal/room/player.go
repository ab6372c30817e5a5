package room

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ugaemi/roomrelay/internal/ws"
)

type ConnectionState int

const (
	StateConnected ConnectionState = iota
	StateDisconnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes ConnectionState as a string.
func (s ConnectionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes ConnectionState from a string.
func (s *ConnectionState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "disconnected":
		*s = StateDisconnected
	default:
		*s = StateConnected
	}
	return nil
}

// Player is a room member. Client is nil while the player is disconnected.
type Player struct {
	ID          string
	DisplayName string
	IsHost      bool
	State       ConnectionState
	JoinedAt    time.Time
	Client      *ws.Client

	removal ws.Timer
}

// PlayerInfo is the wire view of a Player.
type PlayerInfo struct {
	ID              string          `json:"id"`
	DisplayName     string          `json:"displayName"`
	IsHost          bool            `json:"isHost"`
	ConnectionState ConnectionState `json:"connectionState"`
}

// NewPlayer issues a fresh identity bound to client.
func NewPlayer(displayName string, client *ws.Client) *Player {
	return &Player{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		State:       StateConnected,
		JoinedAt:    time.Now(),
		Client:      client,
	}
}

func (p *Player) IsConnected() bool {
	return p.State == StateConnected
}

// Disconnect marks the player disconnected and drops its connection handle.
func (p *Player) Disconnect() {
	p.State = StateDisconnected
	p.Client = nil
}

// Reconnect cancels any pending removal and attaches client.
func (p *Player) Reconnect(client *ws.Client) {
	p.CancelRemoval()
	p.State = StateConnected
	p.Client = client
}

// ScheduleRemoval stores the reconnection-window timer, replacing any
// earlier one.
func (p *Player) ScheduleRemoval(t ws.Timer) {
	p.CancelRemoval()
	p.removal = t
}

// CancelRemoval stops the pending removal, if any. Safe when the timer
// already fired.
func (p *Player) CancelRemoval() {
	if p.removal != nil {
		p.removal.Stop()
		p.removal = nil
	}
}

// RemovalPending reports whether t is the player's current removal timer.
// A fired callback uses it to detect that it was superseded.
func (p *Player) RemovalPending(t ws.Timer) bool {
	return p.removal != nil && p.removal == t
}

func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:              p.ID,
		DisplayName:     p.DisplayName,
		IsHost:          p.IsHost,
		ConnectionState: p.State,
	}
}
