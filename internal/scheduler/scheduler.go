// Package scheduler dispatches daily journal prompts to users whose
// configured local delivery time has arrived.
package scheduler

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/messaging"
	accountmodels "io.winapps.microjournal/internal/models/account"
	journalmodels "io.winapps.microjournal/internal/models/journal"
	"io.winapps.microjournal/internal/prompts"
	"io.winapps.microjournal/internal/store"
)

// TimeRegex validates 24-hour HH:MM delivery times.
var TimeRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):([0-5][0-9])$`)

const promptMessageFormat = "🌟 Your daily MicroJournal prompt:\n\n%s\n\nReply to this message with your thoughts to save it to your journal."

// TickError records one recipient's failure within a tick.
type TickError struct {
	UserUID string `json:"user_uid"`
	Error   string `json:"error"`
}

// TickResult summarizes one scheduler tick. Per-recipient failures are
// collected here rather than aborting the batch.
type TickResult struct {
	Eligible int         `json:"eligible"`
	Sent     int         `json:"sent"`
	Errors   []TickError `json:"errors"`
}

type Scheduler struct {
	users     store.UserStore
	prompts   store.PromptStore
	catalog   *prompts.Catalog
	transport messaging.Transport
	logger    *zap.SugaredLogger
}

func New(users store.UserStore, promptStore store.PromptStore, catalog *prompts.Catalog, transport messaging.Transport, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		users:     users,
		prompts:   promptStore,
		catalog:   catalog,
		transport: transport,
		logger:    logger,
	}
}

// RunTick sends prompts to every user whose delivery time equals
// currentTime. The caller decides what "current" means: the external
// trigger passes its own clock reading through verbatim, while the cron
// driver resolves each timezone's local time first and scopes the tick
// to that zone. Recipients without a verified WhatsApp number are
// skipped silently; send failures are isolated per recipient.
func (s *Scheduler) RunTick(ctx context.Context, currentTime string) (TickResult, error) {
	return s.runTick(ctx, currentTime, "")
}

func (s *Scheduler) runTick(ctx context.Context, currentTime, timezone string) (TickResult, error) {
	var result TickResult
	if !TimeRegex.MatchString(currentTime) {
		return result, fmt.Errorf("invalid time %q, expected HH:MM", currentTime)
	}

	users, err := s.users.EligibleForPrompt(ctx, currentTime, timezone)
	if err != nil {
		return result, err
	}
	result.Eligible = len(users)

	for i := range users {
		user := &users[i]
		if !user.WhatsAppVerified || user.Phone() == "" {
			s.logger.Debugw("skipping user without verified whatsapp",
				"user_uid", user.UID)
			continue
		}
		if err := s.dispatch(ctx, user); err != nil {
			s.logger.Errorw("failed to send daily prompt",
				"user_uid", user.UID, "error", err)
			result.Errors = append(result.Errors, TickError{UserUID: user.UID, Error: err.Error()})
			continue
		}
		result.Sent++
	}

	if result.Eligible > 0 {
		s.logger.Infow("scheduler tick complete",
			"time", currentTime, "timezone", timezone,
			"eligible", result.Eligible, "sent", result.Sent, "errors", len(result.Errors))
	}
	return result, nil
}

// dispatch is one recipient's unit of work: generate, send, record.
func (s *Scheduler) dispatch(ctx context.Context, user *accountmodels.User) error {
	prompt := s.catalog.Generate(user.PromptCategories)

	messageID, err := s.transport.Send(ctx, user.Phone(),
		fmt.Sprintf(promptMessageFormat, prompt), messaging.ChannelWhatsApp)
	if err != nil {
		return err
	}

	sent := &journalmodels.SentPrompt{
		ID:         uuid.New().String(),
		UserUID:    user.UID,
		PromptText: prompt,
		MessageID:  messageID,
		Status:     journalmodels.PromptStatusSent,
	}
	if err := s.prompts.Insert(ctx, sent); err != nil {
		// The message is already on its way; losing the record means the
		// reply cannot be correlated, so surface it as this user's error.
		return fmt.Errorf("prompt sent but not recorded: %w", err)
	}
	return nil
}
