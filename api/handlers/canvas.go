package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shared-canvas/backend/internal/model"
	"github.com/shared-canvas/backend/internal/repository"
	"github.com/shared-canvas/backend/internal/ws"
)

// CanvasHandler handles HTTP requests against the stroke store. The delete
// endpoints are the durable mutation path; each one also fires a hub-wide
// delete signal so live peers resynchronize.
type CanvasHandler struct {
	strokes *repository.StrokeRepository
	hub     *ws.Hub
}

// NewCanvasHandler creates a new CanvasHandler.
func NewCanvasHandler(strokes *repository.StrokeRepository, hub *ws.Hub) *CanvasHandler {
	return &CanvasHandler{
		strokes: strokes,
		hub:     hub,
	}
}

// ClearRequest represents the body of a clear-all call.
type ClearRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// GetCanvas handles GET /canvas - returns a snapshot of all stored strokes.
func (h *CanvasHandler) GetCanvas(c *gin.Context) {
	strokes, err := h.strokes.All(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch strokes: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, strokes)
}

// Draw handles POST /draw - inserts one stroke and returns the post-insert
// snapshot. HTTP ingestion alternative to the WebSocket path; a client
// submits a given stroke through exactly one of the two.
func (h *CanvasHandler) Draw(c *gin.Context) {
	var stroke model.Stroke
	if err := c.ShouldBindJSON(&stroke); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid stroke: "+err.Error())
		return
	}

	if err := h.strokes.Insert(c.Request.Context(), &stroke); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to insert stroke: "+err.Error())
		return
	}

	strokes, err := h.strokes.All(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch strokes: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, strokes)
}

// Clear handles DELETE /clear - deletes every stroke owned by the given
// user, notifies all live sessions and returns the post-delete snapshot.
func (h *CanvasHandler) Clear(c *gin.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "userID is required")
		return
	}

	if err := h.strokes.DeleteByUser(c.Request.Context(), req.UserID); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear strokes: "+err.Error())
		return
	}

	// Signal fires after the mutation lands, so peers that resync after
	// their delay observe the post-delete store.
	h.hub.BroadcastDelete("")

	strokes, err := h.strokes.All(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch strokes: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, strokes)
}

// Remove handles DELETE /remove - deletes a single structural match and
// notifies all live sessions. Removing a stroke that no longer exists is a
// no-op, never an error.
func (h *CanvasHandler) Remove(c *gin.Context) {
	var stroke model.Stroke
	if err := c.ShouldBindJSON(&stroke); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid stroke: "+err.Error())
		return
	}

	if err := h.strokes.DeleteOne(c.Request.Context(), &stroke); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove stroke: "+err.Error())
		return
	}

	h.hub.BroadcastDelete("")

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers the canvas routes on a Gin router group.
func (h *CanvasHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/canvas", h.GetCanvas)
	rg.POST("/draw", h.Draw)
	rg.DELETE("/clear", h.Clear)
	rg.DELETE("/remove", h.Remove)
}
