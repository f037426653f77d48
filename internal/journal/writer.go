// Package journal persists journal entries and keeps sent-prompt
// bookkeeping in step with incoming answers.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	journalmodels "io.winapps.microjournal/internal/models/journal"
	"io.winapps.microjournal/internal/store"
)

// CreateEntryParams describes one entry write. Exactly one of UserUID and
// PhoneNumber may be empty: web entries always carry a uid, channel
// entries may only carry the sender's phone number.
type CreateEntryParams struct {
	Content      string
	UserUID      string
	PhoneNumber  string
	Channel      journalmodels.Channel
	SentPromptID string
}

type Writer struct {
	entries store.EntryStore
	prompts store.PromptStore
	logger  *zap.SugaredLogger
}

func NewWriter(entries store.EntryStore, prompts store.PromptStore, logger *zap.SugaredLogger) *Writer {
	return &Writer{entries: entries, prompts: prompts, logger: logger}
}

// CreateEntry validates and persists a journal entry. When the entry
// answers a prompt, the prompt's status update is best effort: the entry
// write is never rolled back because the correlation bookkeeping failed.
func (w *Writer) CreateEntry(ctx context.Context, params CreateEntryParams) (*journalmodels.JournalEntry, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, faults.New(faults.KindValidation, "entry content is empty")
	}
	if params.UserUID == "" && params.PhoneNumber == "" {
		return nil, faults.New(faults.KindValidation, "entry needs a user id or phone number")
	}
	if !params.Channel.Valid() {
		return nil, faults.Newf(faults.KindValidation, "unknown channel %q", params.Channel)
	}

	entry := &journalmodels.JournalEntry{
		ID:      uuid.New().String(),
		Content: content,
		Channel: params.Channel,
	}
	if params.UserUID != "" {
		entry.UserUID = &params.UserUID
	}
	if params.PhoneNumber != "" {
		entry.PhoneNumber = &params.PhoneNumber
	}
	if params.SentPromptID != "" {
		entry.SentPromptID = &params.SentPromptID
	}

	if err := w.entries.Insert(ctx, entry); err != nil {
		return nil, err
	}

	if params.SentPromptID != "" {
		updated, err := w.prompts.MarkAnswered(ctx, params.SentPromptID, content, time.Now())
		if err != nil {
			w.logger.Errorw("failed to mark prompt answered",
				"sent_prompt_id", params.SentPromptID, "entry_id", entry.ID, "error", err)
		} else if !updated {
			w.logger.Infow("prompt already answered, keeping first response",
				"sent_prompt_id", params.SentPromptID, "entry_id", entry.ID)
		}
	}

	return entry, nil
}

// UpdateEntry replaces an entry's content after the same validation as a
// create.
func (w *Writer) UpdateEntry(ctx context.Context, id, ownerUID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return faults.New(faults.KindValidation, "entry content is empty")
	}
	return w.entries.UpdateContent(ctx, id, ownerUID, content)
}

// DeleteEntry removes an entry owned by the given user.
func (w *Writer) DeleteEntry(ctx context.Context, id, ownerUID string) error {
	return w.entries.Delete(ctx, id, ownerUID)
}

// GetEntry fetches a single entry owned by the given user.
func (w *Writer) GetEntry(ctx context.Context, id, ownerUID string) (*journalmodels.JournalEntry, error) {
	return w.entries.GetByID(ctx, id, ownerUID)
}

// ListEntries returns the user's entries, newest first.
func (w *Writer) ListEntries(ctx context.Context, ownerUID string, limit, offset int) ([]journalmodels.JournalEntry, error) {
	return w.entries.ListByUser(ctx, ownerUID, limit, offset)
}
