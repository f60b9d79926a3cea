package ocr

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// retrier runs an operation up to attempts times with exponential backoff.
// Each attempt gets its own timeout; the deadline bounds the whole sequence
// and short-circuits remaining attempts once passed.
type retrier struct {
	attempts   int
	baseDelay  time.Duration
	maxDelay   time.Duration
	perAttempt time.Duration
	deadline   time.Time
	log        *zap.Logger
}

func (r retrier) do(ctx context.Context, label string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, r.delay(attempt-1)); err != nil {
				return err
			}
		}
		if !r.deadline.IsZero() && time.Now().After(r.deadline) {
			if lastErr != nil {
				return fmt.Errorf("%s: time budget exhausted after %d attempts: %w", label, attempt, lastErr)
			}
			return fmt.Errorf("%s: time budget exhausted", label)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.perAttempt)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		r.log.Warn("attempt failed",
			zap.String("operation", label),
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", r.attempts),
			zap.Error(err))
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", label, r.attempts, lastErr)
}

// delay returns the backoff before the retry following the given zero-based
// attempt: base, base*2, base*4, ... capped at maxDelay.
func (r retrier) delay(attempt int) time.Duration {
	d := r.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= r.maxDelay {
			return r.maxDelay
		}
	}
	if d > r.maxDelay {
		d = r.maxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
