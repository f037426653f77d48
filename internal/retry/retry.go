package retry

import (
	"context"
	"time"

	"io.winapps.microjournal/internal/faults"
)

// Policy bounds a retried operation: at most Attempts tries, sleeping
// BaseDelay before the second attempt and doubling before each one after.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultPolicy matches the transcription pipeline's contract: three
// attempts with backoff of 1s then 2s (then 4s would follow, but the
// third attempt is the last).
var DefaultPolicy = Policy{Attempts: 3, BaseDelay: time.Second}

// Do runs op until it succeeds, returns a non-retryable fault, or the
// policy is exhausted. The delay between attempts honors ctx cancellation.
// The last error seen is returned.
func Do(ctx context.Context, p Policy, op func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var err error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !faults.Retryable(err) {
			return err
		}
		if attempt == p.Attempts {
			break
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay *= 2
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
