package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	prefsmodels "io.winapps.microjournal/internal/models/update_preferences"
	"io.winapps.microjournal/internal/prompts"
	"io.winapps.microjournal/internal/scheduler"
	"io.winapps.microjournal/internal/store"
)

type PreferencesHandler struct {
	users  store.UserStore
	logger *zap.SugaredLogger
}

func NewPreferencesHandler(users store.UserStore, logger *zap.SugaredLogger) *PreferencesHandler {
	return &PreferencesHandler{users: users, logger: logger}
}

// UpdatePreferences handles changes to a user's prompt delivery settings.
// Unknown prompt categories are dropped rather than rejected so older
// clients keep working when the category set changes.
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	var req prefsmodels.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userUID, ok := contextUID(c)
	if !ok {
		return
	}

	if !scheduler.TimeRegex.MatchString(req.PromptTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt time must be in HH:MM format"})
		return
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown timezone"})
		return
	}

	enabled := true
	if req.NotificationsEnabled != nil {
		enabled = *req.NotificationsEnabled
	}

	prefs := store.Preferences{
		Timezone:             req.Timezone,
		NotificationsEnabled: enabled,
		PromptTime:           req.PromptTime,
		PromptCategories:     prompts.FilterCategories(req.PromptCategories),
	}

	if err := h.users.UpdatePreferences(c.Request.Context(), userUID, prefs); err != nil {
		h.logError(c, err, "failed to update preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Preferences updated",
		"prompt_time":       prefs.PromptTime,
		"timezone":          prefs.Timezone,
		"prompt_categories": prefs.PromptCategories,
	})
}
