package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/identity"
	"io.winapps.microjournal/internal/journal"
	journalmodels "io.winapps.microjournal/internal/models/journal"
)

type mockMappingStore struct {
	byPhone map[string]string
}

func (m *mockMappingStore) UserForPhone(_ context.Context, phone string) (string, error) {
	uid, ok := m.byPhone[phone]
	if !ok {
		return "", faults.Newf(faults.KindNotFound, "no user for phone %s", phone)
	}
	return uid, nil
}

func (m *mockMappingStore) PhoneForUser(_ context.Context, uid string) (string, error) {
	for phone, u := range m.byPhone {
		if u == uid {
			return phone, nil
		}
	}
	return "", faults.Newf(faults.KindNotFound, "no phone for user %s", uid)
}

func (m *mockMappingStore) Upsert(_ context.Context, phone, uid string) (string, error) {
	prior := m.byPhone[phone]
	m.byPhone[phone] = uid
	return prior, nil
}

type mockEntryStore struct {
	inserted  []journalmodels.JournalEntry
	insertErr error
}

func (m *mockEntryStore) Insert(_ context.Context, entry *journalmodels.JournalEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, *entry)
	return nil
}

func (m *mockEntryStore) GetByID(_ context.Context, id, _ string) (*journalmodels.JournalEntry, error) {
	return nil, faults.Newf(faults.KindNotFound, "entry %s not found", id)
}

func (m *mockEntryStore) ListByUser(_ context.Context, _ string, _, _ int) ([]journalmodels.JournalEntry, error) {
	return m.inserted, nil
}

func (m *mockEntryStore) UpdateContent(_ context.Context, _, _, _ string) error { return nil }
func (m *mockEntryStore) Delete(_ context.Context, _, _ string) error           { return nil }

type mockPromptStore struct {
	latest   *journalmodels.SentPrompt
	answered []string
}

func (m *mockPromptStore) Insert(_ context.Context, _ *journalmodels.SentPrompt) error { return nil }

func (m *mockPromptStore) LatestForUser(_ context.Context, uid string) (*journalmodels.SentPrompt, error) {
	if m.latest == nil {
		return nil, faults.Newf(faults.KindNotFound, "no prompts for user %s", uid)
	}
	return m.latest, nil
}

func (m *mockPromptStore) MarkAnswered(_ context.Context, id, _ string, _ time.Time) (bool, error) {
	m.answered = append(m.answered, id)
	return true, nil
}

type mockTranscriber struct {
	transcript string
	err        error
	calls      int
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.transcript, nil
}

type mockDeduper struct {
	seen map[string]bool
}

func (m *mockDeduper) FirstSeen(_ context.Context, id string) (bool, error) {
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

type webhookFixture struct {
	handler *WebhookHandler
	entries *mockEntryStore
	prompts *mockPromptStore
	speech  *mockTranscriber
	router  *gin.Engine
}

func newWebhookFixture(mapped map[string]string) *webhookFixture {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	entries := &mockEntryStore{}
	prompts := &mockPromptStore{}
	speech := &mockTranscriber{transcript: "today I walked by the river"}
	resolver := identity.NewResolver(&mockMappingStore{byPhone: mapped}, nil, logger)
	writer := journal.NewWriter(entries, prompts, logger)

	handler := NewWebhookHandler(resolver, writer, prompts, speech,
		&mockDeduper{seen: map[string]bool{}}, "hook-secret", logger)

	router := gin.New()
	router.GET("/webhook", handler.VerifyWebhook)
	router.POST("/webhook", handler.ReceiveMessage)

	return &webhookFixture{
		handler: handler,
		entries: entries,
		prompts: prompts,
		speech:  speech,
		router:  router,
	}
}

func (f *webhookFixture) postForm(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func inboundForm(sid, from, body string) url.Values {
	return url.Values{
		"MessageSid": {sid},
		"From":       {from},
		"Body":       {body},
		"NumMedia":   {"0"},
	}
}

func TestVerifyWebhookEchoesChallenge(t *testing.T) {
	f := newWebhookFixture(nil)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=hook-secret&hub.challenge=1234", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "1234" {
		t.Errorf("body = %q, want the raw challenge", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q, want text/plain", ct)
	}
}

func TestVerifyWebhookRejectsBadToken(t *testing.T) {
	f := newWebhookFixture(nil)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1234", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestVerifyWebhookRejectsMissingParams(t *testing.T) {
	f := newWebhookFixture(nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReceiveMessageSavesEntryAndAnswersPrompt(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})
	f.prompts.latest = &journalmodels.SentPrompt{ID: "prompt-9", UserUID: "user-1"}

	w := f.postForm(inboundForm("SM100", "whatsapp:+15551234567", "Grateful for the quiet morning"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Your journal entry has been saved") {
		t.Errorf("body = %q, want the saved confirmation", w.Body.String())
	}
	if len(f.entries.inserted) != 1 {
		t.Fatalf("inserted %d entries, want 1", len(f.entries.inserted))
	}

	entry := f.entries.inserted[0]
	if entry.Channel != journalmodels.ChannelWhatsApp {
		t.Errorf("channel = %q, want %q", entry.Channel, journalmodels.ChannelWhatsApp)
	}
	if entry.UserUID == nil || *entry.UserUID != "user-1" {
		t.Errorf("user uid = %v, want user-1", entry.UserUID)
	}
	if entry.SentPromptID == nil || *entry.SentPromptID != "prompt-9" {
		t.Errorf("sent prompt id = %v, want prompt-9", entry.SentPromptID)
	}
	if len(f.prompts.answered) != 1 || f.prompts.answered[0] != "prompt-9" {
		t.Errorf("answered prompts = %v, want [prompt-9]", f.prompts.answered)
	}
}

func TestReceiveMessageSMSChannel(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})

	w := f.postForm(inboundForm("SM101", "+15551234567", "plain text entry"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(f.entries.inserted) != 1 {
		t.Fatalf("inserted %d entries, want 1", len(f.entries.inserted))
	}
	if got := f.entries.inserted[0].Channel; got != journalmodels.ChannelSMS {
		t.Errorf("channel = %q, want %q", got, journalmodels.ChannelSMS)
	}
}

func TestReceiveMessageUnknownSenderAcknowledgedSilently(t *testing.T) {
	f := newWebhookFixture(nil)

	w := f.postForm(inboundForm("SM102", "whatsapp:+15550000001", "hello?"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: unknown senders must not trigger redelivery", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); strings.Contains(body, "<Message>") {
		t.Errorf("body = %q, want an empty response with no reply text", body)
	}
	if len(f.entries.inserted) != 0 {
		t.Errorf("inserted %d entries, want none", len(f.entries.inserted))
	}
}

func TestReceiveMessageRejectsMalformedPayload(t *testing.T) {
	f := newWebhookFixture(nil)

	form := url.Values{"Body": {"no sid or sender"}}
	w := f.postForm(form)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReceiveMessageDuplicateDeliveryIgnored(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})

	first := f.postForm(inboundForm("SM103", "whatsapp:+15551234567", "only once"))
	second := f.postForm(inboundForm("SM103", "whatsapp:+15551234567", "only once"))

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d, want both %d", first.Code, second.Code, http.StatusOK)
	}
	if len(f.entries.inserted) != 1 {
		t.Errorf("inserted %d entries, want 1 despite the redelivery", len(f.entries.inserted))
	}
}

func TestReceiveMessageVoiceNoteTranscribed(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})

	form := inboundForm("SM104", "whatsapp:+15551234567", "")
	form.Set("NumMedia", "1")
	form.Set("MediaUrl0", "media-ref-1")
	w := f.postForm(form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if f.speech.calls != 1 {
		t.Fatalf("transcriber called %d times, want 1", f.speech.calls)
	}
	if len(f.entries.inserted) != 1 {
		t.Fatalf("inserted %d entries, want 1", len(f.entries.inserted))
	}
	if got := f.entries.inserted[0].Content; got != "today I walked by the river" {
		t.Errorf("content = %q, want the transcript", got)
	}
}

func TestReceiveMessageTranscriptionFailureRepliesWithApology(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})
	f.speech.err = faults.New(faults.KindPermanent, "speech service rejected audio")

	form := inboundForm("SM105", "whatsapp:+15551234567", "")
	form.Set("NumMedia", "1")
	form.Set("MediaUrl0", "media-ref-2")
	w := f.postForm(form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "couldn't transcribe your audio message") {
		t.Errorf("body = %q, want the transcription apology", w.Body.String())
	}
	if len(f.entries.inserted) != 0 {
		t.Errorf("inserted %d entries, want none on transcription failure", len(f.entries.inserted))
	}
}

func TestReceiveMessageEmptyBodyPromptsForContent(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})

	w := f.postForm(inboundForm("SM106", "whatsapp:+15551234567", "   "))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Your message was empty") {
		t.Errorf("body = %q, want the empty message reply", w.Body.String())
	}
	if len(f.entries.inserted) != 0 {
		t.Errorf("inserted %d entries, want none", len(f.entries.inserted))
	}
}

func TestReceiveMessagePersistenceFailureStillAcknowledged(t *testing.T) {
	f := newWebhookFixture(map[string]string{"+15551234567": "user-1"})
	f.entries.insertErr = faults.New(faults.KindPersistence, "insert failed")

	w := f.postForm(inboundForm("SM107", "whatsapp:+15551234567", "will not persist"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: storage trouble must stay invisible to the provider", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); strings.Contains(body, "has been saved") {
		t.Errorf("body = %q, must not claim the entry was saved", body)
	}
}
