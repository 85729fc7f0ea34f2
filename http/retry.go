package http

import (
	"context"
	"time"

	"github.com/fwojciec/domsift"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure RetryFetcher implements domsift.Fetcher at compile time.
var _ domsift.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher wraps a Fetcher with exponential backoff retry logic.
// With the default delays a fetch is attempted up to 4 times (1 initial
// + 3 retries at 1s, 2s, 4s).
type RetryFetcher struct {
	next   domsift.Fetcher
	delays []time.Duration
}

// NewRetryFetcher creates a RetryFetcher with the given delays.
// Nil delays means DefaultRetryDelays.
func NewRetryFetcher(next domsift.Fetcher, delays []time.Duration) *RetryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{next: next, delays: delays}
}

// Fetch attempts the fetch, retrying on failure after each delay.
// Returns the last fetch error once the delays are exhausted.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := len(f.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		// Wait before next attempt
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}

	return "", lastErr
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}
