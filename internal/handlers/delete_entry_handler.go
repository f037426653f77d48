package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.microjournal/internal/faults"
	getentrymodels "io.winapps.microjournal/internal/models/get_entry"
)

// DeleteEntry handles removal of an entry owned by the caller.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
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

	if err := h.writer.DeleteEntry(c.Request.Context(), req.EntryID, userUID); err != nil {
		if faults.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found or access denied"})
			return
		}
		h.logError(c, err, "failed to delete entry", "entry_id", req.EntryID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}
