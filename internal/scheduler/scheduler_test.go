package scheduler

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/messaging"
	accountmodels "io.winapps.microjournal/internal/models/account"
	journalmodels "io.winapps.microjournal/internal/models/journal"
	"io.winapps.microjournal/internal/prompts"
	"io.winapps.microjournal/internal/store"
)

type mockUserStore struct {
	users     []accountmodels.User
	timezones []string
	gotTime   string
	gotZone   string
}

func (m *mockUserStore) GetByUID(context.Context, string) (*accountmodels.User, error) {
	return nil, faults.New(faults.KindNotFound, "not found")
}
func (m *mockUserStore) UpdatePreferences(context.Context, string, store.Preferences) error {
	return nil
}
func (m *mockUserStore) SetPhoneVerified(context.Context, string, string) error { return nil }

func (m *mockUserStore) EligibleForPrompt(_ context.Context, promptTime, timezone string) ([]accountmodels.User, error) {
	m.gotTime = promptTime
	m.gotZone = timezone
	var out []accountmodels.User
	for _, u := range m.users {
		if !u.NotificationsEnabled || u.PromptTime != promptTime {
			continue
		}
		if timezone != "" && u.Timezone != timezone {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) DistinctTimezones(context.Context) ([]string, error) {
	return m.timezones, nil
}

type mockPromptStore struct {
	inserted []journalmodels.SentPrompt
}

func (m *mockPromptStore) Insert(_ context.Context, p *journalmodels.SentPrompt) error {
	m.inserted = append(m.inserted, *p)
	return nil
}
func (m *mockPromptStore) LatestForUser(context.Context, string) (*journalmodels.SentPrompt, error) {
	return nil, faults.New(faults.KindNotFound, "no prompts")
}
func (m *mockPromptStore) MarkAnswered(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}

type mockTransport struct {
	sentTo  []string
	failFor map[string]error
}

func (m *mockTransport) Send(_ context.Context, to, _ string, _ messaging.Channel) (string, error) {
	if err, ok := m.failFor[to]; ok {
		return "", err
	}
	m.sentTo = append(m.sentTo, to)
	return "SM-" + to, nil
}

func phone(p string) *string { return &p }

func verifiedUser(uid, number, promptTime string) accountmodels.User {
	return accountmodels.User{
		UID:                  uid,
		PhoneNumber:          phone(number),
		Timezone:             "UTC",
		NotificationsEnabled: true,
		PromptTime:           promptTime,
		PromptCategories:     []string{"reflection"},
		WhatsAppVerified:     true,
	}
}

func newTestScheduler(users *mockUserStore, promptStore *mockPromptStore, transport *mockTransport) *Scheduler {
	logger := zap.NewNop().Sugar()
	catalog := prompts.NewCatalog(rand.New(rand.NewSource(7)), logger)
	return New(users, promptStore, catalog, transport, logger)
}

func TestRunTick_SkipsUnverifiedSilently(t *testing.T) {
	unverified := verifiedUser("user-3", "+15550003", "09:00")
	unverified.WhatsAppVerified = false

	users := &mockUserStore{users: []accountmodels.User{
		verifiedUser("user-1", "+15550001", "09:00"),
		verifiedUser("user-2", "+15550002", "09:00"),
		unverified,
	}}
	promptStore := &mockPromptStore{}
	transport := &mockTransport{}
	s := newTestScheduler(users, promptStore, transport)

	result, err := s.RunTick(context.Background(), "09:00")
	if err != nil {
		t.Fatalf("RunTick: %v", err)
	}
	if result.Eligible != 3 {
		t.Fatalf("eligible = %d, want 3", result.Eligible)
	}
	if result.Sent != 2 || len(transport.sentTo) != 2 {
		t.Fatalf("sent = %d (%v), want 2", result.Sent, transport.sentTo)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("a silent skip must not appear in the error list: %v", result.Errors)
	}
	if len(promptStore.inserted) != 2 {
		t.Fatalf("expected 2 recorded prompts, got %d", len(promptStore.inserted))
	}
	for _, p := range promptStore.inserted {
		if p.Status != journalmodels.PromptStatusSent {
			t.Fatalf("recorded status = %q", p.Status)
		}
	}
}

func TestRunTick_IsolatesPerRecipientFailures(t *testing.T) {
	users := &mockUserStore{users: []accountmodels.User{
		verifiedUser("user-1", "+15550001", "09:00"),
		verifiedUser("user-2", "+15550002", "09:00"),
		verifiedUser("user-3", "+15550003", "09:00"),
	}}
	promptStore := &mockPromptStore{}
	transport := &mockTransport{failFor: map[string]error{
		"+15550002": faults.New(faults.KindTransient, "carrier timeout"),
	}}
	s := newTestScheduler(users, promptStore, transport)

	result, err := s.RunTick(context.Background(), "09:00")
	if err != nil {
		t.Fatalf("partial failure must not fail the tick: %v", err)
	}
	if result.Sent != 2 {
		t.Fatalf("sent = %d, want 2", result.Sent)
	}
	if len(result.Errors) != 1 || result.Errors[0].UserUID != "user-2" {
		t.Fatalf("errors = %v", result.Errors)
	}
	// No SentPrompt row for the failed recipient.
	for _, p := range promptStore.inserted {
		if p.UserUID == "user-2" {
			t.Fatalf("failed send must not be recorded: %+v", p)
		}
	}
}

func TestRunTick_RejectsMalformedTime(t *testing.T) {
	s := newTestScheduler(&mockUserStore{}, &mockPromptStore{}, &mockTransport{})
	for _, bad := range []string{"9:00", "24:00", "09:60", "morning", ""} {
		if _, err := s.RunTick(context.Background(), bad); err == nil {
			t.Errorf("time %q should be rejected", bad)
		}
	}
}

func TestRunTick_NoEligibleUsers(t *testing.T) {
	s := newTestScheduler(&mockUserStore{}, &mockPromptStore{}, &mockTransport{})
	result, err := s.RunTick(context.Background(), "09:00")
	if err != nil {
		t.Fatalf("RunTick: %v", err)
	}
	if result.Eligible != 0 || result.Sent != 0 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestCronDriver_ConvertsToEachUsersLocalTime(t *testing.T) {
	tokyo := verifiedUser("user-tokyo", "+81300000001", "18:00")
	tokyo.Timezone = "Asia/Tokyo"
	newYork := verifiedUser("user-nyc", "+12120000001", "18:00")
	newYork.Timezone = "America/New_York"

	users := &mockUserStore{
		users:     []accountmodels.User{tokyo, newYork},
		timezones: []string{"Asia/Tokyo", "America/New_York"},
	}
	promptStore := &mockPromptStore{}
	transport := &mockTransport{}
	s := newTestScheduler(users, promptStore, transport)

	d := NewCronDriver(s)
	// 2025-06-02 09:00 UTC is 18:00 in Tokyo (UTC+9) and 05:00 in New
	// York (EDT): only the Tokyo user's delivery time has arrived.
	d.now = func() time.Time {
		return time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	}

	d.RunOnce(context.Background())

	if len(transport.sentTo) != 1 || transport.sentTo[0] != "+81300000001" {
		t.Fatalf("sentTo = %v, want only the Tokyo user", transport.sentTo)
	}
}

func TestCronDriver_SkipsInvalidTimezone(t *testing.T) {
	u := verifiedUser("user-1", "+15550001", "09:00")
	u.Timezone = "Mars/Olympus_Mons"
	users := &mockUserStore{
		users:     []accountmodels.User{u},
		timezones: []string{"Mars/Olympus_Mons"},
	}
	transport := &mockTransport{}
	s := newTestScheduler(users, &mockPromptStore{}, transport)

	d := NewCronDriver(s)
	d.RunOnce(context.Background())

	if len(transport.sentTo) != 0 {
		t.Fatalf("no sends expected for an invalid timezone, got %v", transport.sentTo)
	}
}

func TestRunTick_PromptBodyContainsTemplate(t *testing.T) {
	users := &mockUserStore{users: []accountmodels.User{
		verifiedUser("user-1", "+15550001", "09:00"),
	}}
	promptStore := &mockPromptStore{}
	transport := &mockTransport{}
	s := newTestScheduler(users, promptStore, transport)

	if _, err := s.RunTick(context.Background(), "09:00"); err != nil {
		t.Fatalf("RunTick: %v", err)
	}
	if len(promptStore.inserted) != 1 {
		t.Fatalf("expected one recorded prompt")
	}
	if strings.TrimSpace(promptStore.inserted[0].PromptText) == "" {
		t.Fatalf("recorded prompt text is empty")
	}
}
