package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"io.winapps.microjournal/internal/faults"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioTransport sends messages through the Twilio Messages API.
type TwilioTransport struct {
	accountSID   string
	authToken    string
	whatsappFrom string
	smsFrom      string
	baseURL      string
	client       *http.Client
}

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
	SMSFrom      string
}

func NewTwilioTransport(cfg TwilioConfig) *TwilioTransport {
	return &TwilioTransport{
		accountSID:   cfg.AccountSID,
		authToken:    cfg.AuthToken,
		whatsappFrom: cfg.WhatsAppFrom,
		smsFrom:      cfg.SMSFrom,
		baseURL:      twilioAPIBase,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts one message. WhatsApp recipients get the whatsapp: scheme
// tag; SMS recipients are addressed by the bare number.
func (t *TwilioTransport) Send(ctx context.Context, to, body string, channel Channel) (string, error) {
	if to == "" {
		return "", faults.New(faults.KindValidation, "empty recipient")
	}

	var from string
	switch channel {
	case ChannelWhatsApp:
		from = t.whatsappFrom
		to = "whatsapp:" + strings.TrimPrefix(to, "whatsapp:")
	case ChannelSMS:
		from = t.smsFrom
	default:
		return "", faults.Newf(faults.KindValidation, "unknown channel %q", channel)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "build send request", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", faults.Wrap(faults.KindTransient, "send message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", faults.Newf(faults.KindPermanent, "send rejected with status %d (bad credential)", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", faults.Newf(faults.KindTransient, "send failed with status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", faults.Newf(faults.KindPermanent, "send failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", faults.Wrap(faults.KindTransient, "decode send response", err)
	}
	if payload.SID == "" {
		return "", faults.New(faults.KindPermanent, "send response has no message sid")
	}
	return payload.SID, nil
}
