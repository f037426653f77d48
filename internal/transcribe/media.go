package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"io.winapps.microjournal/internal/faults"
)

// MediaClient resolves a media reference against the WhatsApp media
// endpoint and downloads the payload. References that are already URLs
// (Twilio delivers those directly in the webhook form) skip resolution.
type MediaClient struct {
	apiURL      string
	accessToken string
	client      *http.Client
}

func NewMediaClient(apiURL, accessToken string, client *http.Client) *MediaClient {
	return &MediaClient{apiURL: strings.TrimRight(apiURL, "/"), accessToken: accessToken, client: client}
}

// FetchToFile downloads the media behind mediaRef into destPath.
func (m *MediaClient) FetchToFile(ctx context.Context, mediaRef, destPath string) error {
	mediaURL, err := m.resolveURL(ctx, mediaRef)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return faults.Wrap(faults.KindPermanent, "build media download request", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return faults.Wrap(faults.KindTransient, "download media", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, "media download")
	}

	out, err := os.Create(destPath)
	if err != nil {
		return faults.Wrap(faults.KindPermanent, "create temp file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return faults.Wrap(faults.KindTransient, "write media payload", err)
	}
	return nil
}

// resolveURL turns a media id into a short-lived download URL via the
// provider's media endpoint. A reference that already looks like a URL is
// returned as-is.
func (m *MediaClient) resolveURL(ctx context.Context, mediaRef string) (string, error) {
	if strings.HasPrefix(mediaRef, "http://") || strings.HasPrefix(mediaRef, "https://") {
		return mediaRef, nil
	}

	endpoint := m.apiURL + "/" + mediaRef
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "build media resolve request", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", faults.Wrap(faults.KindTransient, "resolve media url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, "media resolve")
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", faults.Wrap(faults.KindTransient, "decode media resolve response", err)
	}
	if payload.URL == "" {
		return "", faults.New(faults.KindPermanent, "media resolve response has no url")
	}
	return payload.URL, nil
}

// classifyStatus maps an HTTP status to a fault: credential failures are
// permanent, rate limits and server errors are worth retrying, anything
// else in the 4xx range is a bad request that retrying cannot fix.
func classifyStatus(code int, op string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return faults.Newf(faults.KindPermanent, "%s rejected with status %d (bad credential)", op, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return faults.Newf(faults.KindTransient, "%s failed with status %d", op, code)
	default:
		return faults.New(faults.KindPermanent, fmt.Sprintf("%s failed with status %d", op, code))
	}
}
