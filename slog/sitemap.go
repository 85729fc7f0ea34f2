package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/domsift"
)

var _ domsift.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService records each discovery pass with the number of
// URLs it produced.
type LoggingSitemapService struct {
	next   domsift.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next domsift.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the outcome.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *domsift.URLFilter) ([]string, error) {
	start := time.Now()
	urls, err := s.next.DiscoverURLs(ctx, baseURL, filter)
	s.logger.Info("sitemap discovery",
		"url", baseURL,
		"count", len(urls),
		"duration", time.Since(start),
		"err", err,
	)
	return urls, err
}
