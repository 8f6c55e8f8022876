package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DeleteMessage is the literal text frame that signals a deletion on the
// wire, in both directions.
const DeleteMessage = "delete"

// Client represents one WebSocket connection's server-side session. Each
// session owns a fresh identifier for the connection's lifetime; it is never
// persisted.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	id     string
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new session for a WebSocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, 256),
	}
}

// Send queues a message to be sent to the client.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer full, close the client. Delivery is best-effort; the
		// publisher never learns about a dropped subscriber.
		c.closeLocked()
	}
}

// Close closes the client's send channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ID returns the session identifier assigned on connect.
func (c *Client) ID() string {
	return c.id
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// SendChan returns the send channel for the client.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// Hub is the process-wide publish/subscribe router between sessions. It
// relays new strokes and delete signals to every connected session except
// the originator. There is no persistence and no replay: a session that
// connects after an event fires never sees it.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Register adds a session to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister removes a session from the hub and closes it. Only the owning
// session may unregister itself; no further sends target it afterwards.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()

	client.Close()
}

// BroadcastStroke fans a serialized stroke out to every session except the
// originator. Publish is fire-and-forget.
func (h *Hub) BroadcastStroke(originID string, payload []byte) {
	h.broadcastExcept(originID, payload)
}

// BroadcastDelete fans the delete signal out to every session except the
// originator. An empty originID means broadcast to everyone unconditionally.
func (h *Hub) BroadcastDelete(originID string) {
	h.broadcastExcept(originID, []byte(DeleteMessage))
}

func (h *Hub) broadcastExcept(originID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if originID != "" && client.id == originID {
			continue
		}
		client.Send(data)
	}
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all sessions and empties the hub.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
