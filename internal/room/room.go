package room

import (
	"encoding/json"
	"time"

	"github.com/ugaemi/roomrelay/internal/ws"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes Phase as a string.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Room is a session container. It has no lock of its own: every read and
// write happens on the hub loop.
type Room struct {
	Code        string
	HostID      string
	Phase       Phase
	TargetScore int
	CreatedAt   time.Time

	order   []string
	players map[string]*Player
}

// NewRoom creates an empty lobby-phase room with the given code.
func NewRoom(code string) *Room {
	return &Room{
		Code:      code,
		Phase:     PhaseLobby,
		CreatedAt: time.Now(),
		players:   make(map[string]*Player),
	}
}

// CanAdd reports why a new player could not join, or nil if one can.
func (r *Room) CanAdd(capacity int) error {
	if r.Phase == PhaseActive {
		return ErrGameAlreadyStarted
	}
	if len(r.order) >= capacity {
		return ErrRoomFull
	}
	return nil
}

// AddPlayer appends p to the room. The first player becomes host.
func (r *Room) AddPlayer(p *Player, capacity int) error {
	if err := r.CanAdd(capacity); err != nil {
		return err
	}

	r.players[p.ID] = p
	r.order = append(r.order, p.ID)

	if len(r.order) == 1 {
		r.HostID = p.ID
		p.IsHost = true
	}
	return nil
}

// RemovePlayer deletes a player and cancels its pending removal. If it was
// the host, HostID is cleared; the caller decides whether to elect a new one.
func (r *Room) RemovePlayer(playerID string) *Player {
	p, ok := r.players[playerID]
	if !ok {
		return nil
	}
	p.CancelRemoval()

	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.HostID == playerID {
		r.HostID = ""
		p.IsHost = false
	}
	return p
}

// ElectHost promotes the first connected player in join order. When no
// player is connected the room is left without a host.
func (r *Room) ElectHost() (string, bool) {
	r.HostID = ""
	for _, id := range r.order {
		r.players[id].IsHost = false
	}
	for _, id := range r.order {
		p := r.players[id]
		if p.IsConnected() {
			p.IsHost = true
			r.HostID = id
			return id, true
		}
	}
	return "", false
}

// Start moves the room to the active phase. There is no way back.
func (r *Room) Start(targetScore int) {
	r.Phase = PhaseActive
	r.TargetScore = targetScore
}

func (r *Room) Player(id string) *Player {
	return r.players[id]
}

// Players returns members in join order.
func (r *Room) Players() []*Player {
	players := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, r.players[id])
	}
	return players
}

func (r *Room) PlayerCount() int {
	return len(r.order)
}

func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.IsConnected() {
			n++
		}
	}
	return n
}

func (r *Room) IsEmpty() bool {
	return len(r.order) == 0
}

// PlayerList returns the wire view of all members in join order.
func (r *Room) PlayerList() []PlayerInfo {
	list := make([]PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.players[id].Info())
	}
	return list
}

// Broadcast sends msg to every connected player except exceptID. Pass an
// empty exceptID to include everyone.
func (r *Room) Broadcast(msg ws.Message, exceptID string) {
	for _, id := range r.order {
		if id == exceptID {
			continue
		}
		p := r.players[id]
		if p.IsConnected() && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}
