//go:build integration

package rod_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/goquery"
	"github.com/fwojciec/domsift/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireHTMLDocument asserts that raw is a complete serialized page.
func requireHTMLDocument(t *testing.T, raw string) {
	t.Helper()
	lower := strings.ToLower(strings.TrimSpace(raw))
	require.True(t, strings.HasPrefix(lower, "<!doctype html>") || strings.HasPrefix(lower, "<html"),
		"expected a document, got %.60q", raw)
	for _, tag := range []string{"<head>", "</head>", "<body", "</body>", "</html>"} {
		require.Contains(t, raw, tag)
	}
}

// react.dev is fully client-rendered; the tutorial text exists only after
// hydration, which makes it a good probe for whether rendering ran.
func TestFetcher_LiveSite_RenderedPageIsFeaturizable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(30 * time.Second))
	require.NoError(t, err)
	defer fetcher.Close()

	const url = "https://react.dev/learn"
	html, err := fetcher.Fetch(ctx, url)
	require.NoError(t, err)
	requireHTMLDocument(t, html)
	assert.Contains(t, html, "Creating and nesting components")

	// The serialized markup must survive the same feature pass the
	// training pipeline applies to stored pages.
	table, err := goquery.NewFeaturizer().Featurize(&domsift.Document{URL: url, HTML: html})
	require.NoError(t, err)

	var texted int
	for _, block := range table.Blocks {
		if block.Text != "" {
			texted++
		}
	}
	assert.Greater(t, texted, 10, "a rendered docs page should yield many text blocks")
}

func TestFetcher_LiveSite_HtmxDocs(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(30 * time.Second))
	require.NoError(t, err)
	defer fetcher.Close()

	html, err := fetcher.Fetch(ctx, "https://htmx.org/docs/")
	require.NoError(t, err)
	requireHTMLDocument(t, html)

	// Sidebar navigation and attribute reference only appear once the
	// page has fully rendered.
	assert.Contains(t, html, "htmx in a Nutshell")
	assert.Contains(t, html, "hx-get")

	t.Logf("fetched %d bytes", len(html))
}
