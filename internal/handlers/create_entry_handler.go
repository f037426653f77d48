package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/journal"
	createmodels "io.winapps.microjournal/internal/models/create_entry"
	journalmodels "io.winapps.microjournal/internal/models/journal"
)

type EntryHandler struct {
	writer *journal.Writer
	logger *zap.SugaredLogger
}

// NewEntryHandler creates the handler for web journal entry operations.
func NewEntryHandler(writer *journal.Writer, logger *zap.SugaredLogger) *EntryHandler {
	return &EntryHandler{writer: writer, logger: logger}
}

// CreateEntry handles creation of new journal entries from the web surface.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req createmodels.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userUID, ok := contextUID(c)
	if !ok {
		return
	}

	entry, err := h.writer.CreateEntry(c.Request.Context(), journal.CreateEntryParams{
		Content:      req.Content,
		UserUID:      userUID,
		Channel:      journalmodels.ChannelWeb,
		SentPromptID: req.SentPromptID,
	})
	if err != nil {
		if faults.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logError(c, err, "failed to create entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create entry"})
		return
	}

	response := createmodels.CreateEntryResponse{
		ID:        entry.ID,
		Content:   entry.Content,
		Channel:   string(entry.Channel),
		CreatedAt: entry.CreatedAt,
	}
	if entry.SentPromptID != nil {
		response.SentPromptID = *entry.SentPromptID
	}

	c.JSON(http.StatusCreated, response)
}

// contextUID pulls the authenticated uid placed on the context by the
// auth middleware, writing the failure response itself when absent.
func contextUID(c *gin.Context) (string, bool) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	userUID, ok := uid.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user context"})
		return "", false
	}
	return userUID, true
}
