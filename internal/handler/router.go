package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/store"
	"github.com/ugaemi/roomrelay/internal/ws"
)

const (
	DefaultCapacity        = 6
	DefaultReconnectWindow = 120 * time.Second
)

// Scheduler runs fn after d on the same goroutine that calls the Router.
// *ws.Hub implements it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) ws.Timer
}

// Options configures a Router. Scheduler is required; other zero values
// fall back to defaults.
type Options struct {
	Capacity        int
	ReconnectWindow time.Duration
	Scheduler       Scheduler
	Journal         store.Journal
}

// Router dispatches incoming messages to the session operations. It is not
// safe for concurrent use; the hub loop is its only caller.
type Router struct {
	rm       *room.Manager
	registry *Registry
	sched    Scheduler
	journal  store.Journal

	capacity int
	window   time.Duration
}

// NewRouter creates a new message router.
func NewRouter(rm *room.Manager, opts Options) *Router {
	if opts.Capacity < 1 {
		opts.Capacity = DefaultCapacity
	}
	if opts.ReconnectWindow <= 0 {
		opts.ReconnectWindow = DefaultReconnectWindow
	}
	if opts.Journal == nil {
		opts.Journal = store.Discard
	}
	return &Router{
		rm:       rm,
		registry: NewRegistry(),
		sched:    opts.Scheduler,
		journal:  opts.Journal,
		capacity: opts.Capacity,
		window:   opts.ReconnectWindow,
	}
}

// Registry exposes the connection bindings.
func (r *Router) Registry() *Registry {
	return r.registry
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	var msg ws.Message
	if err := json.Unmarshal(cm.Data, &msg); err != nil || msg.Type == "" {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage(CodeInvalidMessage, "invalid message format"))
		return
	}

	switch msg.Type {
	// Session messages
	case ws.TypeCreateRoom:
		r.handleCreateRoom(cm.Client, msg)
	case ws.TypeJoinRoom:
		r.handleJoinRoom(cm.Client, msg)
	case ws.TypeReconnect:
		r.handleReconnect(cm.Client, msg)
	case ws.TypeLeaveRoom:
		r.handleLeaveRoom(cm.Client)
	case ws.TypeStartGame:
		r.handleStartGame(cm.Client, msg)

	// Relay messages
	case ws.TypeGameMessage:
		r.handleGameMessage(cm.Client, msg)
	case ws.TypeChatMessage:
		r.handleChatMessage(cm.Client, msg)
	case ws.TypePing:
		r.handlePing(cm.Client)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage(CodeUnknownType, "unknown message type: "+msg.Type))
	}
}

// HandleDisconnect handles client disconnection from transport loss or a
// failed liveness probe.
func (r *Router) HandleDisconnect(client *ws.Client) {
	r.disconnect(client)
}
