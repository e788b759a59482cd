package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fossabot/chatJS-main/internal/models"
	"github.com/fossabot/chatJS-main/internal/repositories"
)

// HistoryHandler serves the message history read side.
type HistoryHandler struct {
	keys     repositories.ChannelKeyRepository
	messages repositories.MessageRepository
}

// NewHistoryHandler builds a HistoryHandler.
func NewHistoryHandler(keys repositories.ChannelKeyRepository, messages repositories.MessageRepository) *HistoryHandler {
	return &HistoryHandler{keys: keys, messages: messages}
}

// GetMessages returns the active messages of a channel together with its
// metadata. The target is either a counterparty uid (direct) or an encoded
// member set (group): more than two delimited members means a group channel.
func (h *HistoryHandler) GetMessages(c *gin.Context) {
	uid := c.GetString("uid")
	target := c.Param("target")

	if len(models.SplitMembers(target)) > 2 {
		h.groupMessages(c, uid, target)
		return
	}

	rec, err := h.keys.FindByCounterpart(c.Request.Context(), uid, target)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChannelKeyNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "not found"})
		return
	}

	msgs, err := h.messages.ListActive(c.Request.Context(), models.NamespaceDirect, rec.ChannelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	// Counterparty profile data lives with the identity service; only the
	// uid is known here.
	c.JSON(http.StatusOK, gin.H{
		"other":    gin.H{"uid": target},
		"messages": msgs,
		"chatID":   rec.ChannelID,
	})
}

func (h *HistoryHandler) groupMessages(c *gin.Context, uid, target string) {
	rec, err := h.keys.FindByCounterpart(c.Request.Context(), uid, target)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChannelKeyNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "not found"})
		return
	}

	msgs, err := h.messages.ListActive(c.Request.Context(), models.NamespaceGroup, rec.ChannelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	configs, err := h.messages.FindConfig(c.Request.Context(), models.NamespaceGroup, rec.ChannelID)
	if err != nil && !errors.Is(err, repositories.ErrMessageNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load channel config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configs":   configs,
		"messages":  msgs,
		"isGroupDM": true,
	})
}
