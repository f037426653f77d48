package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"io.winapps.microjournal/internal/faults"
)

const whisperEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// WhisperClient submits audio files to the OpenAI transcription API.
type WhisperClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewWhisperClient(apiKey string, client *http.Client) *WhisperClient {
	return &WhisperClient{apiKey: apiKey, endpoint: whisperEndpoint, client: client}
}

// Transcribe uploads the audio file at path and returns the transcript.
func (w *WhisperClient) Transcribe(ctx context.Context, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "read audio file", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "build upload form", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", faults.Wrap(faults.KindPermanent, "write upload form", err)
	}
	_ = form.WriteField("model", "whisper-1")
	_ = form.WriteField("language", "en")
	_ = form.WriteField("response_format", "json")
	_ = form.WriteField("temperature", "0.2")
	if err := form.Close(); err != nil {
		return "", faults.Wrap(faults.KindPermanent, "finalize upload form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, &body)
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "build transcription request", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", faults.Wrap(faults.KindTransient, "call transcription api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused before classifying.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", classifyStatus(resp.StatusCode, "transcription")
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", faults.Wrap(faults.KindTransient, "decode transcription response", err)
	}
	if payload.Text == "" {
		return "", faults.New(faults.KindPermanent, "transcription response has no text")
	}
	return payload.Text, nil
}
