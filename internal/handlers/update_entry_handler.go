package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.microjournal/internal/faults"
	updatemodels "io.winapps.microjournal/internal/models/update_entry"
)

// UpdateEntry handles replacing an entry's content.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	var req updatemodels.UpdateEntryRequest
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

	if err := h.writer.UpdateEntry(c.Request.Context(), req.EntryID, userUID, req.Content); err != nil {
		switch {
		case faults.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case faults.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found or access denied"})
		default:
			h.logError(c, err, "failed to update entry", "entry_id", req.EntryID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry updated"})
}
