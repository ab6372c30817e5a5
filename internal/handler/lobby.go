package handler

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/store"
	"github.com/ugaemi/roomrelay/internal/ws"
)

type createRoomRequest struct {
	DisplayName string `json:"displayName"`
}

type roomEnteredResponse struct {
	RoomCode string            `json:"roomCode"`
	PlayerID string            `json:"playerId"`
	Players  []room.PlayerInfo `json:"players"`
}

// handleCreateRoom creates a room with the caller as its host.
func (r *Router) handleCreateRoom(client *ws.Client, msg ws.Message) {
	var req createRoomRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || strings.TrimSpace(req.DisplayName) == "" {
		sendError(client, errInvalidRequest)
		return
	}

	r.disconnect(client)

	rm, player, err := r.rm.CreateRoom(strings.TrimSpace(req.DisplayName), client)
	if err != nil {
		slog.Error("failed to create room", "client", client.ID, "error", err)
		sendError(client, err)
		return
	}
	r.registry.Bind(client, Binding{PlayerID: player.ID, RoomCode: rm.Code})

	r.reply(client, ws.TypeRoomCreated, roomEnteredResponse{
		RoomCode: rm.Code,
		PlayerID: player.ID,
		Players:  rm.PlayerList(),
	})
	r.record(rm.Code, store.KindRoomCreated, player.ID, player.DisplayName)

	slog.Info("player created room", "player", player.ID, "room", rm.Code)
}

type joinRoomRequest struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type playerJoinedEvent struct {
	Player  room.PlayerInfo   `json:"player"`
	Players []room.PlayerInfo `json:"players"`
}

// handleJoinRoom adds the caller to an existing lobby.
func (r *Router) handleJoinRoom(client *ws.Client, msg ws.Message) {
	var req joinRoomRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil ||
		strings.TrimSpace(req.RoomCode) == "" || strings.TrimSpace(req.DisplayName) == "" {
		sendError(client, errInvalidRequest)
		return
	}

	rm := r.rm.GetRoom(req.RoomCode)
	if rm == nil {
		sendError(client, room.ErrRoomNotFound)
		return
	}

	// A seat the caller already holds in this room is given up by joining.
	capacity := r.capacity
	prev := r.seatIn(rm, client)
	if prev != nil {
		capacity++
	}
	if err := rm.CanAdd(capacity); err != nil {
		sendError(client, err)
		return
	}

	if prev != nil {
		r.registry.Unbind(client)
		prev.Disconnect()
	} else {
		r.disconnect(client)
	}

	player := room.NewPlayer(strings.TrimSpace(req.DisplayName), client)
	if err := rm.AddPlayer(player, capacity); err != nil {
		sendError(client, err)
		return
	}
	r.registry.Bind(client, Binding{PlayerID: player.ID, RoomCode: rm.Code})

	players := rm.PlayerList()
	r.reply(client, ws.TypeRoomJoined, roomEnteredResponse{
		RoomCode: rm.Code,
		PlayerID: player.ID,
		Players:  players,
	})
	r.broadcast(rm, ws.TypePlayerJoined, playerJoinedEvent{
		Player:  player.Info(),
		Players: players,
	}, player.ID)
	r.record(rm.Code, store.KindPlayerJoined, player.ID, player.DisplayName)

	if prev != nil {
		r.removePlayer(rm, prev.ID)
	}

	slog.Info("player joined room", "player", player.ID, "room", rm.Code)
}

// seatIn returns the player client is bound to in rm, if any.
func (r *Router) seatIn(rm *room.Room, client *ws.Client) *room.Player {
	b, ok := r.registry.Lookup(client)
	if !ok || b.RoomCode != rm.Code {
		return nil
	}
	return rm.Player(b.PlayerID)
}

type reconnectRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type reconnectedResponse struct {
	RoomCode    string            `json:"roomCode"`
	PlayerID    string            `json:"playerId"`
	Players     []room.PlayerInfo `json:"players"`
	IsHost      bool              `json:"isHost"`
	Phase       room.Phase        `json:"phase"`
	TargetScore int               `json:"targetScore"`
}

type playerEvent struct {
	PlayerID string            `json:"playerId"`
	Players  []room.PlayerInfo `json:"players"`
}

// handleReconnect reattaches the caller to a disconnected identity.
func (r *Router) handleReconnect(client *ws.Client, msg ws.Message) {
	var req reconnectRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.RoomCode == "" || req.PlayerID == "" {
		sendReconnectFailed(client, errInvalidRequest)
		return
	}

	rm := r.rm.GetRoom(req.RoomCode)
	if rm == nil {
		sendReconnectFailed(client, room.ErrRoomNotFound)
		return
	}
	player := rm.Player(req.PlayerID)
	if player == nil {
		sendReconnectFailed(client, room.ErrPlayerNotFound)
		return
	}
	if player.IsConnected() {
		sendReconnectFailed(client, room.ErrAlreadyConnected)
		return
	}

	r.disconnect(client)

	player.Reconnect(client)
	r.registry.Bind(client, Binding{PlayerID: player.ID, RoomCode: rm.Code})

	promoted := false
	if rm.HostID == "" {
		_, promoted = rm.ElectHost()
	}

	players := rm.PlayerList()
	r.reply(client, ws.TypeReconnected, reconnectedResponse{
		RoomCode:    rm.Code,
		PlayerID:    player.ID,
		Players:     players,
		IsHost:      player.IsHost,
		Phase:       rm.Phase,
		TargetScore: rm.TargetScore,
	})
	r.broadcast(rm, ws.TypePlayerReconnected, playerEvent{
		PlayerID: player.ID,
		Players:  players,
	}, player.ID)
	r.record(rm.Code, store.KindPlayerReconnected, player.ID, "")

	if promoted {
		r.announceHost(rm)
	}

	slog.Info("player reconnected", "player", player.ID, "room", rm.Code)
}

type roomLeftResponse struct {
	RoomCode string `json:"roomCode"`
}

// handleLeaveRoom removes the caller from its room in any phase.
func (r *Router) handleLeaveRoom(client *ws.Client) {
	b, ok := r.registry.Unbind(client)
	if !ok {
		return
	}

	if rm := r.rm.GetRoom(b.RoomCode); rm != nil {
		r.removePlayer(rm, b.PlayerID)
	}
	r.reply(client, ws.TypeRoomLeft, roomLeftResponse{RoomCode: b.RoomCode})

	slog.Info("player left room", "player", b.PlayerID, "room", b.RoomCode)
}

type startGameRequest struct {
	TargetScore int `json:"targetScore"`
}

type gameStartedEvent struct {
	TargetScore int               `json:"targetScore"`
	Players     []room.PlayerInfo `json:"players"`
}

// handleStartGame moves the caller's room to the active phase.
func (r *Router) handleStartGame(client *ws.Client, msg ws.Message) {
	b, ok := r.registry.Lookup(client)
	if !ok {
		sendError(client, room.ErrNotInRoom)
		return
	}
	rm := r.rm.GetRoom(b.RoomCode)
	if rm == nil {
		sendError(client, room.ErrRoomNotFound)
		return
	}
	if rm.HostID != b.PlayerID {
		sendError(client, room.ErrNotHost)
		return
	}
	var req startGameRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.TargetScore < 1 {
		sendError(client, errInvalidRequest)
		return
	}
	if rm.Phase == room.PhaseActive {
		sendError(client, room.ErrGameAlreadyStarted)
		return
	}
	if rm.ConnectedCount() < 2 {
		sendError(client, room.ErrInsufficientPlayers)
		return
	}

	rm.Start(req.TargetScore)
	r.broadcast(rm, ws.TypeGameStarted, gameStartedEvent{
		TargetScore: rm.TargetScore,
		Players:     rm.PlayerList(),
	}, "")
	r.record(rm.Code, store.KindGameStarted, b.PlayerID, strconv.Itoa(rm.TargetScore))

	slog.Info("game started", "room", rm.Code, "target_score", rm.TargetScore)
}
