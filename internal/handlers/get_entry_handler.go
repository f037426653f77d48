package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.microjournal/internal/faults"
	getentrymodels "io.winapps.microjournal/internal/models/get_entry"
)

// GetEntry handles fetching a single journal entry owned by the caller.
func (h *EntryHandler) GetEntry(c *gin.Context) {
	var req getentrymodels.GetEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userUID, ok := contextUID(c)
	if !ok {
		return
	}

	if req.EntryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Entry ID is required"})
		return
	}

	entry, err := h.writer.GetEntry(c.Request.Context(), req.EntryID, userUID)
	if err != nil {
		if faults.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found or access denied"})
			return
		}
		h.logError(c, err, "failed to fetch entry", "entry_id", req.EntryID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entry"})
		return
	}

	c.JSON(http.StatusOK, entry)
}
