package ws

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	// alive is cleared by each liveness probe and set again by any
	// inbound frame or pong.
	alive atomic.Bool
}

// NewClient creates a new Client with a fresh connection ID.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		ID:   uuid.NewString(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
	c.alive.Store(true)
	return c
}

// MarkAlive records that the peer answered since the last probe.
func (c *Client) MarkAlive() {
	c.alive.Store(true)
}

// ReadPump pumps messages from the WebSocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregisterAsync(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.MarkAlive()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "client", c.ID, "error", err)
			}
			return
		}
		c.MarkAlive()
		c.Hub.submit(&ClientMessage{Client: c, Data: message})
	}
}

// WritePump pumps messages from the hub to the WebSocket connection.
// It exits after writing a close frame once Send is closed.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))

		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// probe sends a ping control frame. WriteControl may run concurrently with
// WritePump.
func (c *Client) probe() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
		slog.Debug("liveness probe failed", "client", c.ID, "error", err)
	}
}

// closeTransport forcibly closes the underlying connection.
func (c *Client) closeTransport() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}

// SendMessage sends a Message to this client without blocking.
func (c *Client) SendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal message", "error", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}

// ClientMessage wraps a raw message with its source client.
type ClientMessage struct {
	Client *Client
	Data   []byte
}
