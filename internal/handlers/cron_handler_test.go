package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/messaging"
	accountmodels "io.winapps.microjournal/internal/models/account"
	"io.winapps.microjournal/internal/prompts"
	"io.winapps.microjournal/internal/scheduler"
	"io.winapps.microjournal/internal/store"
)

type mockUserStore struct {
	eligible    []accountmodels.User
	updatedUID  string
	updatedWith *store.Preferences
}

func (m *mockUserStore) GetByUID(_ context.Context, uid string) (*accountmodels.User, error) {
	return nil, nil
}

func (m *mockUserStore) UpdatePreferences(_ context.Context, uid string, prefs store.Preferences) error {
	m.updatedUID = uid
	m.updatedWith = &prefs
	return nil
}

func (m *mockUserStore) SetPhoneVerified(_ context.Context, _, _ string) error { return nil }

func (m *mockUserStore) EligibleForPrompt(_ context.Context, promptTime, _ string) ([]accountmodels.User, error) {
	var out []accountmodels.User
	for _, u := range m.eligible {
		if u.PromptTime == promptTime {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserStore) DistinctTimezones(_ context.Context) ([]string, error) { return nil, nil }

type mockTransport struct {
	sent []string
}

func (m *mockTransport) Send(_ context.Context, to, _ string, _ messaging.Channel) (string, error) {
	m.sent = append(m.sent, to)
	return "msg-1", nil
}

func newCronFixture(apiKey string, users []accountmodels.User) (*gin.Engine, *mockTransport) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	transport := &mockTransport{}
	catalog := prompts.NewCatalog(rand.New(rand.NewSource(1)), logger)
	sched := scheduler.New(&mockUserStore{eligible: users}, &mockPromptStore{}, catalog, transport, logger)
	handler := NewCronHandler(sched, apiKey, logger)

	router := gin.New()
	router.GET("/cron/daily-prompts", handler.TriggerDailyPrompts)
	return router, transport
}

func verifiedUser(uid, phone, promptTime string) accountmodels.User {
	return accountmodels.User{
		UID:                  uid,
		PhoneNumber:          &phone,
		NotificationsEnabled: true,
		PromptTime:           promptTime,
		WhatsAppVerified:     true,
	}
}

func TestTriggerDailyPromptsRejectsBadKey(t *testing.T) {
	router, transport := newCronFixture("cron-secret", []accountmodels.User{
		verifiedUser("user-1", "+15551230001", "09:00"),
	})

	req := httptest.NewRequest(http.MethodGet, "/cron/daily-prompts?time=09:00&key=wrong", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(transport.sent) != 0 {
		t.Errorf("sent %d messages, want none on auth failure", len(transport.sent))
	}
}

func TestTriggerDailyPromptsRejectsMalformedTime(t *testing.T) {
	router, _ := newCronFixture("cron-secret", nil)

	for _, bad := range []string{"", "9:00", "24:00", "12:5", "noon"} {
		req := httptest.NewRequest(http.MethodGet, "/cron/daily-prompts?time="+bad+"&key=cron-secret", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("time %q: status = %d, want %d", bad, w.Code, http.StatusBadRequest)
		}
	}
}

func TestTriggerDailyPromptsDispatchesMatchingUsers(t *testing.T) {
	router, transport := newCronFixture("cron-secret", []accountmodels.User{
		verifiedUser("user-1", "+15551230001", "09:00"),
		verifiedUser("user-2", "+15551230002", "09:00"),
		verifiedUser("user-3", "+15551230003", "21:30"),
	})

	req := httptest.NewRequest(http.MethodGet, "/cron/daily-prompts?time=09:00&key=cron-secret", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(transport.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(transport.sent))
	}

	var body struct {
		Eligible int      `json:"eligible"`
		Sent     int      `json:"sent"`
		Errors   []any    `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Eligible != 2 || body.Sent != 2 || len(body.Errors) != 0 {
		t.Errorf("response = %+v, want eligible=2 sent=2 errors=0", body)
	}
}
