package handler

import (
	"log/slog"

	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/store"
	"github.com/ugaemi/roomrelay/internal/ws"
)

// disconnect tears down the client's binding. In the active phase the player
// keeps its slot for the reconnection window; in the lobby it is removed at
// once. Unbound clients are a no-op.
func (r *Router) disconnect(client *ws.Client) {
	b, ok := r.registry.Unbind(client)
	if !ok {
		return
	}
	rm := r.rm.GetRoom(b.RoomCode)
	if rm == nil {
		return
	}
	player := rm.Player(b.PlayerID)
	if player == nil || player.Client != client {
		return
	}

	player.Disconnect()

	if rm.Phase != room.PhaseActive {
		r.removePlayer(rm, player.ID)
		slog.Info("player removed from lobby", "player", player.ID, "room", rm.Code)
		return
	}

	r.broadcast(rm, ws.TypePlayerDisconnected, playerEvent{
		PlayerID: player.ID,
		Players:  rm.PlayerList(),
	}, player.ID)
	r.record(rm.Code, store.KindPlayerDisconnected, player.ID, "")

	code, id := rm.Code, player.ID
	var timer ws.Timer
	timer = r.sched.AfterFunc(r.window, func() {
		r.expire(code, id, timer)
	})
	player.ScheduleRemoval(timer)

	slog.Info("player disconnected", "player", id, "room", code, "window", r.window)
}

// expire removes a player whose reconnection window elapsed. The callback is
// stale if the player reconnected, left, or was given a newer timer.
func (r *Router) expire(code, playerID string, timer ws.Timer) {
	rm := r.rm.GetRoom(code)
	if rm == nil {
		return
	}
	player := rm.Player(playerID)
	if player == nil || player.IsConnected() || !player.RemovalPending(timer) {
		return
	}

	r.removePlayer(rm, playerID)
	slog.Info("reconnection window expired", "player", playerID, "room", code)
}

// removePlayer deletes the player, notifies the rest of the room, re-elects
// the host if needed and closes the room once it is empty.
func (r *Router) removePlayer(rm *room.Room, playerID string) {
	wasHost := rm.HostID == playerID
	if rm.RemovePlayer(playerID) == nil {
		return
	}
	r.record(rm.Code, store.KindPlayerLeft, playerID, "")

	if rm.IsEmpty() {
		r.rm.RemoveRoom(rm.Code)
		r.record(rm.Code, store.KindRoomClosed, "", "")
		return
	}

	r.broadcast(rm, ws.TypePlayerLeft, playerEvent{
		PlayerID: playerID,
		Players:  rm.PlayerList(),
	}, "")

	if wasHost {
		if _, ok := rm.ElectHost(); ok {
			r.announceHost(rm)
		} else {
			slog.Info("room has no connected player to host", "room", rm.Code)
		}
	}
}

type hostChangedEvent struct {
	HostID  string            `json:"hostId"`
	Players []room.PlayerInfo `json:"players"`
}

func (r *Router) announceHost(rm *room.Room) {
	r.broadcast(rm, ws.TypeHostChanged, hostChangedEvent{
		HostID:  rm.HostID,
		Players: rm.PlayerList(),
	}, "")
	r.record(rm.Code, store.KindHostChanged, rm.HostID, "")

	slog.Info("host changed", "room", rm.Code, "host", rm.HostID)
}

func (r *Router) record(code, kind, playerID, detail string) {
	r.journal.Record(store.RoomEvent{
		RoomCode: code,
		Kind:     kind,
		PlayerID: playerID,
		Detail:   detail,
	})
}
