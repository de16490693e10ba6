package llm

import (
	"context"
	"time"
)

// withRetry runs fn up to maxAttempts times, doubling the backoff between
// attempts. Completion calls can fail transiently (rate limits, timeouts);
// the caller parses the response only once the call itself succeeded.
func withRetry(ctx context.Context, maxAttempts int, backoff time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	wait := backoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		wait *= 2
	}

	return lastErr
}
