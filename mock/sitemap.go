package mock

import (
	"context"

	"github.com/fwojciec/domsift"
)

var _ domsift.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of domsift.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *domsift.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *domsift.URLFilter) ([]string, error) {
	if s.DiscoverURLsFn == nil {
		panic("mock: DiscoverURLsFn not set")
	}
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
