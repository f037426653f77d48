// Package store holds the persistence layer: one small interface per
// record set plus the PostgreSQL implementations. Components take these
// interfaces in their constructors so tests can substitute in-memory
// fakes.
package store

import (
	"context"
	"time"

	accountmodels "io.winapps.microjournal/internal/models/account"
	journalmodels "io.winapps.microjournal/internal/models/journal"
)

// Preferences are the delivery settings a user can change from the web
// surface.
type Preferences struct {
	Timezone             string
	NotificationsEnabled bool
	PromptTime           string
	PromptCategories     []string
}

type UserStore interface {
	GetByUID(ctx context.Context, uid string) (*accountmodels.User, error)
	UpdatePreferences(ctx context.Context, uid string, prefs Preferences) error
	// SetPhoneVerified stamps the user's phone number and marks the
	// WhatsApp verification complete.
	SetPhoneVerified(ctx context.Context, uid, phone string) error
	// EligibleForPrompt returns notification-enabled users whose
	// configured prompt time equals promptTime. A non-empty timezone
	// restricts the match to users in that zone.
	EligibleForPrompt(ctx context.Context, promptTime, timezone string) ([]accountmodels.User, error)
	// DistinctTimezones lists the timezones of notification-enabled users.
	DistinctTimezones(ctx context.Context) ([]string, error)
}

type MappingStore interface {
	UserForPhone(ctx context.Context, phone string) (string, error)
	PhoneForUser(ctx context.Context, uid string) (string, error)
	// Upsert associates phone with uid, overwriting any prior mapping
	// for that number. It returns the uid the number was previously
	// mapped to, or "" when the number was unmapped.
	Upsert(ctx context.Context, phone, uid string) (string, error)
}

type EntryStore interface {
	Insert(ctx context.Context, entry *journalmodels.JournalEntry) error
	GetByID(ctx context.Context, id, ownerUID string) (*journalmodels.JournalEntry, error)
	ListByUser(ctx context.Context, uid string, limit, offset int) ([]journalmodels.JournalEntry, error)
	UpdateContent(ctx context.Context, id, ownerUID, content string) error
	Delete(ctx context.Context, id, ownerUID string) error
}

type PromptStore interface {
	Insert(ctx context.Context, prompt *journalmodels.SentPrompt) error
	// LatestForUser returns the user's most recently created SentPrompt
	// regardless of whether it has already been answered. That mirrors
	// how inbound replies have always been correlated; filtering on
	// status = 'sent' would be stricter but changes which prompt a late
	// reply attaches to.
	LatestForUser(ctx context.Context, uid string) (*journalmodels.SentPrompt, error)
	// MarkAnswered stamps the response fields and flips status to
	// answered, only if the prompt is still in status sent. It reports
	// whether the row was updated, so a second reply can never
	// overwrite the first response.
	MarkAnswered(ctx context.Context, id, responseText string, at time.Time) (bool, error)
}

type VerificationStore interface {
	Create(ctx context.Context, code *accountmodels.VerificationCode) error
	// Consume deletes and returns the unexpired code matching phone and
	// code, or a not-found fault when no such code exists.
	Consume(ctx context.Context, phone, code string, now time.Time) (*accountmodels.VerificationCode, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
