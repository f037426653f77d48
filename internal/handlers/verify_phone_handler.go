package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	verifymodels "io.winapps.microjournal/internal/models/verify_phone"
	"io.winapps.microjournal/internal/verification"
)

type VerifyHandler struct {
	service *verification.Service
	logger  *zap.SugaredLogger
}

func NewVerifyHandler(service *verification.Service, logger *zap.SugaredLogger) *VerifyHandler {
	return &VerifyHandler{service: service, logger: logger}
}

// VerifyPhone handles both halves of phone verification: a request
// without a code starts verification, a request with one completes it.
func (h *VerifyHandler) VerifyPhone(c *gin.Context) {
	var req verifymodels.VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userUID, ok := contextUID(c)
	if !ok {
		return
	}

	if req.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
		return
	}

	ctx := c.Request.Context()

	if req.VerificationCode == "" {
		messageID, err := h.service.Start(ctx, userUID, req.PhoneNumber)
		if err != nil {
			if faults.IsValidation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			h.logError(c, err, "failed to start phone verification")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
			return
		}
		c.JSON(http.StatusOK, verifymodels.VerifyPhoneResponse{
			Message:   "Verification code sent",
			MessageID: messageID,
		})
		return
	}

	if err := h.service.Complete(ctx, userUID, req.PhoneNumber, req.VerificationCode); err != nil {
		if faults.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logError(c, err, "failed to complete phone verification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify phone number"})
		return
	}

	c.JSON(http.StatusOK, verifymodels.VerifyPhoneResponse{
		Message:  "Phone number verified",
		Verified: true,
	})
}
