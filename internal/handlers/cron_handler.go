package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/scheduler"
)

type CronHandler struct {
	scheduler *scheduler.Scheduler
	apiKey    string
	logger    *zap.SugaredLogger
}

func NewCronHandler(sched *scheduler.Scheduler, apiKey string, logger *zap.SugaredLogger) *CronHandler {
	return &CronHandler{scheduler: sched, apiKey: apiKey, logger: logger}
}

// TriggerDailyPrompts runs one scheduler tick for the given wall-clock
// time. The time is matched against prompt_time verbatim, with no
// timezone conversion: external callers own the conversion.
func (h *CronHandler) TriggerDailyPrompts(c *gin.Context) {
	if c.Query("key") != h.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		return
	}

	currentTime := c.Query("time")
	if !scheduler.TimeRegex.MatchString(currentTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Time must be in HH:MM format"})
		return
	}

	result, err := h.scheduler.RunTick(c.Request.Context(), currentTime)
	if err != nil {
		h.logError(c, err, "scheduler tick failed", "time", currentTime)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run prompt dispatch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Prompt dispatch complete",
		"time":     currentTime,
		"eligible": result.Eligible,
		"sent":     result.Sent,
		"errors":   result.Errors,
	})
}
