package crawl

import (
	"context"
	"time"
)

// DefaultRetryDelays returns the backoff delays between page retries: 3s, 5s.
// One initial attempt plus one retry per delay gives the bounded retry count.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{3 * time.Second, 5 * time.Second}
}

// fetchWithRetryDelays attempts fetch with bounded retries. Delays are
// injectable so tests run without waiting.
func fetchWithRetryDelays(ctx context.Context, fetch func(context.Context) (*PageResult, error), delays []time.Duration) (*PageResult, error) {
	maxAttempts := len(delays) + 1

	var lastResult *PageResult
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := fetch(ctx)
		if err == nil {
			return result, nil
		}
		lastResult, lastErr = result, err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return lastResult, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return lastResult, lastErr
}
