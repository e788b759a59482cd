package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fossabot/chatJS-main/internal/models"
)

// MessageCreator ingests a message into a channel. The system flag bypasses
// the blocked-account suppression for service-originated traffic.
type MessageCreator interface {
	Create(ctx context.Context, msg models.Message, system bool) bool
}

// SystemHandler accepts service-originated messages (membership changes,
// channel notices). The route is for trusted internal callers only and must
// not be exposed on the public surface.
type SystemHandler struct {
	creator MessageCreator
}

// NewSystemHandler builds a SystemHandler.
func NewSystemHandler(creator MessageCreator) *SystemHandler {
	return &SystemHandler{creator: creator}
}

// PostMessage ingests one system message into a channel.
func (h *SystemHandler) PostMessage(c *gin.Context) {
	var msg models.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if !h.creator.Create(c.Request.Context(), msg, true) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "message rejected"})
		return
	}
	c.Status(http.StatusAccepted)
}
