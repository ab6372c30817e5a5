package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub maintains the set of active clients and routes messages. Run is the
// only goroutine that invokes OnMessage, OnDisconnect and scheduled tasks, so
// those callbacks never run concurrently with each other.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Incoming   chan *ClientMessage
	mu         sync.RWMutex

	// OnMessage is called for each incoming client message.
	OnMessage func(cm *ClientMessage)
	// OnDisconnect is called once when a client leaves the hub, whether by
	// transport close or by failing a liveness probe.
	OnDisconnect func(client *Client)

	livenessInterval time.Duration
	tasks            chan func()
	done             chan struct{}
	doneOnce         sync.Once
	stopped          chan struct{}
	stopOnce         sync.Once
}

// NewHub creates a new Hub that probes clients every livenessInterval.
func NewHub(livenessInterval time.Duration) *Hub {
	return &Hub{
		Clients:          make(map[*Client]bool),
		Register:         make(chan *Client),
		Unregister:       make(chan *Client),
		Incoming:         make(chan *ClientMessage, 256),
		livenessInterval: livenessInterval,
		tasks:            make(chan func()),
		done:             make(chan struct{}),
		stopped:          make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.stopped)

	ticker := time.NewTicker(h.livenessInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()
			slog.Info("client connected", "client", client.ID)

		case client := <-h.Unregister:
			if h.remove(client) {
				slog.Info("client disconnected", "client", client.ID)
				h.disconnected(client)
			}

		case cm := <-h.Incoming:
			// Frames can still be queued after their client was removed.
			if !h.has(cm.Client) {
				continue
			}
			if h.OnMessage != nil {
				h.OnMessage(cm)
			}

		case task := <-h.tasks:
			task()
			// Shutdown's task closes done; nothing may run after it.
			if h.isDone() {
				return
			}

		case <-ticker.C:
			h.probe()

		case <-h.done:
			return
		}
	}
}

// Timer is a cancelable scheduled task.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn to run on the hub loop after d. Stopping the
// returned timer after it fired is a no-op.
func (h *Hub) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		select {
		case h.tasks <- fn:
		case <-h.done:
		}
	})
}

// Shutdown sends msg to every client, closes their connections and stops
// the loop. It blocks until Run has returned.
func (h *Hub) Shutdown(msg Message) {
	h.stopOnce.Do(func() {
		finished := make(chan struct{})
		task := func() {
			h.mu.Lock()
			for client := range h.Clients {
				client.SendMessage(msg)
				close(client.Send)
				delete(h.Clients, client)
			}
			h.mu.Unlock()
			h.closeDone()
			close(finished)
		}
		select {
		case h.tasks <- task:
			<-finished
		case <-h.stopped:
		}
		h.closeDone()
	})
	<-h.stopped
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

// Accept wraps an upgraded connection in a Client, registers it and starts
// its pumps.
func (h *Hub) Accept(conn *websocket.Conn) *Client {
	client := NewClient(h, conn)
	h.register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}

func (h *Hub) register(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) unregisterAsync(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) submit(cm *ClientMessage) {
	select {
	case h.Incoming <- cm:
	case <-h.done:
	}
}

func (h *Hub) has(client *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Clients[client]
}

// remove deletes client and closes its send channel. It reports whether the
// client was still registered.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Clients[client]; !ok {
		return false
	}
	delete(h.Clients, client)
	close(client.Send)
	return true
}

func (h *Hub) closeDone() {
	h.doneOnce.Do(func() { close(h.done) })
}

func (h *Hub) isDone() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) disconnected(client *Client) {
	if h.OnDisconnect != nil {
		h.OnDisconnect(client)
	}
}
