package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/identity"
	"io.winapps.microjournal/internal/journal"
	journalmodels "io.winapps.microjournal/internal/models/journal"
	"io.winapps.microjournal/internal/store"
)

// TwiML reply bodies. The provider expects a well-formed response for
// every delivered message, including the ones we choose not to act on.
const (
	twimlEmpty            = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
	twimlSaved            = `<?xml version="1.0" encoding="UTF-8"?><Response><Message>Your journal entry has been saved. Thank you for sharing your thoughts!</Message></Response>`
	twimlEmptyMessage     = `<?xml version="1.0" encoding="UTF-8"?><Response><Message>Your message was empty. Please try again with some content.</Message></Response>`
	twimlTranscribeFailed = `<?xml version="1.0" encoding="UTF-8"?><Response><Message>Sorry, we couldn't transcribe your audio message. Please try sending text instead.</Message></Response>`
)

// Transcriber converts a voice attachment reference into text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaRef string) (string, error)
}

type WebhookHandler struct {
	resolver    *identity.Resolver
	writer      *journal.Writer
	prompts     store.PromptStore
	transcriber Transcriber
	dedupe      Deduper
	verifyToken string
	logger      *zap.SugaredLogger
}

// NewWebhookHandler creates the inbound message handler. dedupe may be
// nil to disable redelivery suppression.
func NewWebhookHandler(resolver *identity.Resolver, writer *journal.Writer, prompts store.PromptStore, transcriber Transcriber, dedupe Deduper, verifyToken string, logger *zap.SugaredLogger) *WebhookHandler {
	return &WebhookHandler{
		resolver:    resolver,
		writer:      writer,
		prompts:     prompts,
		transcriber: transcriber,
		dedupe:      dedupe,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// VerifyWebhook handles the provider's one-time subscription handshake:
// echo the challenge only when the mode and token match.
func (h *WebhookHandler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" || challenge == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required verification parameters"})
		return
	}

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Infow("webhook verified")
		c.Data(http.StatusOK, "text/plain", []byte(challenge))
		return
	}

	h.logger.Warnw("webhook verification failed", "mode", mode)
	c.JSON(http.StatusForbidden, gin.H{"error": "Invalid verification token"})
}

// ReceiveMessage ingests one inbound message. Internal failures never
// surface as transport errors: anything that goes wrong past payload
// validation is logged and answered with a neutral acknowledgment so the
// provider does not retry the delivery.
func (h *WebhookHandler) ReceiveMessage(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("panic while processing inbound message", "panic", r)
			h.ack(c, twimlEmpty)
		}
	}()

	ctx := c.Request.Context()

	messageID := c.PostForm("MessageSid")
	from := c.PostForm("From")
	body := c.PostForm("Body")
	numMedia, _ := strconv.Atoi(c.PostForm("NumMedia"))

	if messageID == "" || from == "" {
		h.logger.Errorw("invalid webhook payload", "message_id", messageID, "from", from)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	// Providers redeliver on slow acknowledgments; a replayed message id
	// gets the ack again without writing a second entry.
	if h.dedupe != nil {
		first, err := h.dedupe.FirstSeen(ctx, messageID)
		if err != nil {
			h.logger.Warnw("message dedupe check failed", "message_id", messageID, "error", err)
		} else if !first {
			h.logger.Infow("duplicate message delivery ignored", "message_id", messageID)
			h.ack(c, twimlEmpty)
			return
		}
	}

	channel := journalmodels.ChannelSMS
	if strings.HasPrefix(from, "whatsapp:") {
		channel = journalmodels.ChannelWhatsApp
	}
	phone := identity.NormalizePhone(from)

	userUID, err := h.resolver.ResolveUser(ctx, from)
	if err != nil {
		// Unknown senders are acknowledged, never error'd: a failure
		// status here would make the provider retry a message we will
		// never be able to attribute.
		h.logger.Warnw("no user for inbound phone number",
			"phone", phone, "message_id", messageID, "error", err)
		h.ack(c, twimlEmpty)
		return
	}

	content := body
	if numMedia > 0 {
		mediaRef := c.PostForm("MediaUrl0")
		contentType := c.PostForm("MediaContentType0")
		// Only audio attachments are transcribed; images and the like fall
		// through to whatever text accompanied them.
		if mediaRef != "" && (contentType == "" || strings.HasPrefix(contentType, "audio")) {
			transcript, err := h.transcriber.Transcribe(ctx, mediaRef)
			if err != nil {
				h.logger.Errorw("transcription failed",
					"user_uid", userUID, "message_id", messageID,
					"kind", faults.KindOf(err).String(), "error", err)
				h.ack(c, twimlTranscribeFailed)
				return
			}
			content = transcript
		}
	}

	if strings.TrimSpace(content) == "" {
		h.logger.Infow("empty message received", "user_uid", userUID, "message_id", messageID)
		h.ack(c, twimlEmptyMessage)
		return
	}

	// Correlate with the most recently sent prompt, if any. A missing
	// prompt just means an unprompted entry.
	promptID := ""
	if latest, err := h.prompts.LatestForUser(ctx, userUID); err == nil {
		promptID = latest.ID
	} else if !faults.IsNotFound(err) {
		h.logger.Warnw("failed to look up latest prompt", "user_uid", userUID, "error", err)
	}

	if _, err := h.writer.CreateEntry(ctx, journal.CreateEntryParams{
		Content:      content,
		UserUID:      userUID,
		PhoneNumber:  phone,
		Channel:      channel,
		SentPromptID: promptID,
	}); err != nil {
		h.logger.Errorw("failed to save inbound entry",
			"user_uid", userUID, "message_id", messageID, "error", err)
		h.ack(c, twimlEmpty)
		return
	}

	h.ack(c, twimlSaved)
}

func (h *WebhookHandler) ack(c *gin.Context, twiml string) {
	c.Data(http.StatusOK, "text/xml", []byte(twiml))
}
