package handler

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/ws"
)

type gameMessageRequest struct {
	Payload json.RawMessage `json:"payload"`
}

type gameMessageEvent struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// handleGameMessage forwards an opaque payload to the rest of the room.
// Anything that cannot be delivered is dropped without a reply.
func (r *Router) handleGameMessage(client *ws.Client, msg ws.Message) {
	rm, player := r.activeSender(client)
	if rm == nil {
		return
	}

	var req gameMessageRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || len(req.Payload) == 0 {
		slog.Debug("dropping game message", "player", player.ID, "error", err)
		return
	}

	r.broadcast(rm, ws.TypeGameMessage, gameMessageEvent{
		From:    player.ID,
		Payload: req.Payload,
	}, player.ID)
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

type chatMessageEvent struct {
	From        string `json:"from"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"`
}

// handleChatMessage echoes chat to every connected member, sender included.
func (r *Router) handleChatMessage(client *ws.Client, msg ws.Message) {
	rm, player := r.activeSender(client)
	if rm == nil {
		return
	}

	var req chatMessageRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		return
	}

	r.broadcast(rm, ws.TypeChatMessage, chatMessageEvent{
		From:        player.ID,
		DisplayName: player.DisplayName,
		Text:        req.Text,
		Timestamp:   time.Now().UnixMilli(),
	}, "")
}

type pongResponse struct {
	Timestamp int64 `json:"timestamp"`
}

func (r *Router) handlePing(client *ws.Client) {
	r.reply(client, ws.TypePong, pongResponse{Timestamp: time.Now().UnixMilli()})
}

// activeSender resolves the caller's room and player, or nil when relaying
// is not allowed.
func (r *Router) activeSender(client *ws.Client) (*room.Room, *room.Player) {
	b, ok := r.registry.Lookup(client)
	if !ok {
		return nil, nil
	}
	rm := r.rm.GetRoom(b.RoomCode)
	if rm == nil || rm.Phase != room.PhaseActive {
		return nil, nil
	}
	player := rm.Player(b.PlayerID)
	if player == nil {
		return nil, nil
	}
	return rm, player
}

func (r *Router) reply(client *ws.Client, msgType string, payload any) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		slog.Error("failed to encode message", "type", msgType, "error", err)
		return
	}
	client.SendMessage(msg)
}

func (r *Router) broadcast(rm *room.Room, msgType string, payload any, exceptID string) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		slog.Error("failed to encode message", "type", msgType, "room", rm.Code, "error", err)
		return
	}
	rm.Broadcast(msg, exceptID)
}
