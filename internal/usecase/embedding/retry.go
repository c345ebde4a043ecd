package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// retryWithBackoff runs op up to maxAttempts times, doubling baseDelay after each
// failure. It stops early on context cancellation and on errors marked
// domain.ErrProviderRejected. It returns the number of attempts made and the
// last error.
func retryWithBackoff(
	ctx context.Context, op func(ctx context.Context) error,
	maxAttempts int, baseDelay time.Duration,
	onRetry func(attempt int, delay time.Duration, err error),
) (int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}

		lastErr = op(ctx)
		if lastErr == nil || !retryable(ctx, lastErr) || attempt == maxAttempts {
			return attempt, lastErr
		}

		if onRetry != nil {
			onRetry(attempt, delay, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, lastErr
		case <-timer.C:
		}
		delay *= 2
	}
	return maxAttempts, lastErr
}

// retryable reports whether another attempt could succeed. A per-attempt
// deadline is retryable; cancellation of the caller's context is not.
func retryable(ctx context.Context, err error) bool {
	if errors.Is(err, domain.ErrProviderRejected) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return ctx.Err() == nil
}
