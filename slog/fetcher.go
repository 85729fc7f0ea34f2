package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/domsift"
)

var _ domsift.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher records every page fetch made through it, with the
// response size and latency.
type LoggingFetcher struct {
	next   domsift.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next domsift.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	html, err := f.next.Fetch(ctx, url)
	f.logger.Info("fetch",
		"url", url,
		"bytes", len(html),
		"duration", time.Since(start),
		"err", err,
	)
	return html, err
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
