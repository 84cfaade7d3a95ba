package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	dtoerrors "foodhub/internal/errors"
	mysqlinfra "foodhub/internal/infrastructure/mysql"
)

// Backoff before attempt 2, 3, ...; the last value repeats.
var retryBackoffs = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// withDeadlockRetry runs fn until it succeeds, fails with something other
// than a deadlock, or maxAttempts deadlocks in a row have happened.
func withDeadlockRetry(ctx context.Context, logger *zap.Logger, maxAttempts int, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !mysqlinfra.IsDeadlock(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		wait := backoff(attempt)
		logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.Duration("backoff", wait),
		)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return dtoerrors.NewDeadlockError("max retries exceeded")
}

// backoff is the base delay for attempt with ±20% jitter.
func backoff(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(retryBackoffs) {
		idx = len(retryBackoffs) - 1
	}
	base := retryBackoffs[idx]
	jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
	return base + jitter
}
