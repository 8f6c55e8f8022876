package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shared-canvas/backend/internal/ws"
)

// WebSocketHandler exposes the realtime sync socket over the HTTP router.
type WebSocketHandler struct {
	wsHandler *ws.Handler
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(wsHandler *ws.Handler) *WebSocketHandler {
	return &WebSocketHandler{wsHandler: wsHandler}
}

// Serve handles GET /ws - upgrades the connection and hands it to the hub.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	if err := h.wsHandler.HandleConnection(c.Writer, c.Request); err != nil {
		// Upgrade failure already wrote the HTTP error response.
		return
	}
}

// RegisterRoutes registers the WebSocket route on a Gin router group.
func (h *WebSocketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Serve)
}
