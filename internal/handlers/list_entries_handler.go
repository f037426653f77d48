package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	listmodels "io.winapps.microjournal/internal/models/list_entries"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListEntries handles paginated listing of the caller's entries, newest
// first.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	var req listmodels.ListEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userUID, ok := contextUID(c)
	if !ok {
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	entries, err := h.writer.ListEntries(c.Request.Context(), userUID, limit, offset)
	if err != nil {
		h.logError(c, err, "failed to list entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	c.JSON(http.StatusOK, listmodels.ListEntriesResponse{
		Entries: entries,
		Count:   len(entries),
	})
}
