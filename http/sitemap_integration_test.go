//go:build integration

package http_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/domsift"
	domhttp "github.com/fwojciec/domsift/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// htmx.org declares its sitemap in robots.txt, exercising the full
// discovery path against a real site.
func TestSitemapService_LiveSite_Discovery(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := domhttp.NewSitemapService(nil)
	urls, err := svc.DiscoverURLs(ctx, "https://htmx.org", nil)
	require.NoError(t, err)
	require.NotEmpty(t, urls)

	for _, u := range urls {
		assert.True(t, strings.HasPrefix(u, "https://htmx.org"), "unexpected host in %s", u)
	}
	t.Logf("discovered %d URLs", len(urls))
}

func TestSitemapService_LiveSite_FilteredDiscovery(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := &domsift.URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
	}

	svc := domhttp.NewSitemapService(nil)
	urls, err := svc.DiscoverURLs(ctx, "https://htmx.org", filter)
	require.NoError(t, err)
	require.NotEmpty(t, urls)

	for _, u := range urls {
		assert.Contains(t, u, "/docs/")
	}
}
