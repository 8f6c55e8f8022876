package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shared-canvas/backend/internal/model"
	"github.com/shared-canvas/backend/internal/repository"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1 << 20
)

// Handler bridges WebSocket connections to the hub and the stroke store.
type Handler struct {
	hub      *Hub
	strokes  *repository.StrokeRepository
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, strokes *repository.StrokeRepository, readBufferSize, writeBufferSize int) *Handler {
	return &Handler{
		hub:     hub,
		strokes: strokes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Implement proper origin checking in production
				return true
			},
		},
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket session,
// registers it with the hub and starts the read and write pumps.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(h.hub, conn)
	h.hub.Register(client)

	log.Printf("Client %s connected", client.ID())

	go h.writePump(client)
	go h.readPump(client)

	return nil
}

// readPump pumps inbound frames from the WebSocket connection into the hub
// and the store. A frame is either the delete sentinel or a serialized
// stroke; anything else is logged and dropped, never fatal to the
// connection.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn().Close()
		log.Printf("Client %s disconnected", client.ID())
	}()

	client.Conn().SetReadLimit(maxMessageSize)
	client.Conn().SetReadDeadline(time.Now().Add(pongWait))
	client.Conn().SetPongHandler(func(string) error {
		client.Conn().SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if string(message) == DeleteMessage {
			// Live notification only. The durable mutation happens through
			// the HTTP delete endpoints.
			h.hub.BroadcastDelete(client.ID())
			continue
		}

		var stroke model.Stroke
		if err := json.Unmarshal(message, &stroke); err != nil {
			log.Printf("Failed to unmarshal stroke from %s: %v", client.ID(), err)
			continue
		}

		// Re-marshal so peers and the store see the canonical wire form.
		payload, err := json.Marshal(&stroke)
		if err != nil {
			log.Printf("Failed to marshal stroke: %v", err)
			continue
		}

		h.hub.BroadcastStroke(client.ID(), payload)

		// The socket is the authoritative ingest path for drawn strokes.
		if err := h.strokes.Insert(context.Background(), &stroke); err != nil {
			log.Printf("Failed to persist stroke from %s: %v", client.ID(), err)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	for {
		select {
		case message, ok := <-client.SendChan():
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One event per frame, never batched.
			if err := client.Conn().WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(client.SendChan())
			for i := 0; i < n; i++ {
				queuedMsg := <-client.SendChan()
				client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.Conn().WriteMessage(websocket.TextMessage, queuedMsg); err != nil {
					return
				}
			}
		case <-ticker.C:
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
