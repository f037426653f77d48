// Package transcribe converts voice note attachments into text through a
// two-phase fetch-then-transcribe pipeline with per-phase retries.
package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/retry"
)

type mediaFetcher interface {
	FetchToFile(ctx context.Context, mediaRef, destPath string) error
}

type speechEngine interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Pipeline downloads a voice attachment to a private temp file, submits
// it to the speech engine, and removes the temp file on every exit path.
type Pipeline struct {
	media   mediaFetcher
	engine  speechEngine
	policy  retry.Policy
	tempDir string
	logger  *zap.SugaredLogger
}

// Config carries the provider credentials for a production pipeline.
type Config struct {
	WhatsAppAPIURL      string
	WhatsAppAccessToken string
	OpenAIAPIKey        string
}

func NewPipeline(cfg Config, logger *zap.SugaredLogger) *Pipeline {
	client := &http.Client{Timeout: 30 * time.Second}
	return &Pipeline{
		media:   NewMediaClient(cfg.WhatsAppAPIURL, cfg.WhatsAppAccessToken, client),
		engine:  NewWhisperClient(cfg.OpenAIAPIKey, client),
		policy:  retry.DefaultPolicy,
		tempDir: os.TempDir(),
		logger:  logger,
	}
}

// Transcribe runs both phases for one media reference. Each phase gets
// its own retry budget; a zero-length download and credential failures
// fail fast. The temp file is removed whether or not transcription
// succeeds.
func (p *Pipeline) Transcribe(ctx context.Context, mediaRef string) (string, error) {
	if strings.TrimSpace(mediaRef) == "" {
		return "", faults.New(faults.KindValidation, "empty media reference")
	}

	audioPath := filepath.Join(p.tempDir,
		fmt.Sprintf("wa_audio_%s_%d.ogg", sanitizeRef(mediaRef), time.Now().UnixNano()))
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warnw("failed to remove temp audio file", "path", audioPath, "error", err)
		}
	}()

	// Fetch phase
	if err := retry.Do(ctx, p.policy, func() error {
		return p.media.FetchToFile(ctx, mediaRef, audioPath)
	}); err != nil {
		return "", fmt.Errorf("fetch media %s: %w", mediaRef, err)
	}

	// An empty download is a corrupt upload, not a flaky network; no
	// amount of resubmitting the same bytes will transcribe it.
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", faults.Wrap(faults.KindPermanent, "stat downloaded audio", err)
	}
	if info.Size() == 0 {
		return "", faults.New(faults.KindPermanent, "downloaded audio file is empty")
	}

	// Transcribe phase
	var text string
	if err := retry.Do(ctx, p.policy, func() error {
		var tErr error
		text, tErr = p.engine.Transcribe(ctx, audioPath)
		return tErr
	}); err != nil {
		return "", fmt.Errorf("transcribe media %s: %w", mediaRef, err)
	}

	p.logger.Infow("audio transcribed", "media_ref", mediaRef, "transcript_len", len(text))
	return text, nil
}

// sanitizeRef reduces a media reference (id or URL) to a filesystem-safe
// fragment for the temp file name.
func sanitizeRef(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		ref = ref[i+1:]
	}
	var b strings.Builder
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 48 {
		s = s[:48]
	}
	if s == "" {
		s = "media"
	}
	return s
}
