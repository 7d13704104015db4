// Package storage holds helpers shared by the persistence adapters.
package storage

import (
	"context"
	"time"
)

// WithRetry runs op up to maxAttempts times, sleeping backoff between
// attempts, as long as retryable classifies the error as transient.
// Every multi-row write site uses this one helper instead of growing its
// own busy-loop.
func WithRetry(
	ctx context.Context,
	maxAttempts int,
	backoff time.Duration,
	retryable func(error) bool,
	op func(ctx context.Context) error,
) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) {
			return lastErr
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return lastErr
}
