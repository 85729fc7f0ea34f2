package main_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/domsift"
	main "github.com/fwojciec/domsift/cmd/domsift"
	"github.com/fwojciec/domsift/extract"
	"github.com/fwojciec/domsift/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// okExtractRunner wires a runner whose stages succeed with predictable
// output derived from the URL.
func okExtractRunner() *extract.Runner {
	return &extract.Runner{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "<html>" + url + "</html>", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*domsift.ExtractResult, error) {
				return &domsift.ExtractResult{Title: "Page Title", ContentHTML: "<p>body</p>"}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "body text", nil
			},
		},
		Concurrency: 1,
	}
}

func TestExtractCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints extracted pages to stdout", func(t *testing.T) {
		t.Parallel()

		var update domsift.RunUpdate
		runs := &mock.RunService{
			CreateRunFn: func(_ context.Context, run *domsift.Run) error {
				run.ID = "run-1"
				return nil
			},
			UpdateRunFn: func(_ context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error) {
				update = upd
				return &domsift.Run{ID: id}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs:   runs,
			Runner: okExtractRunner(),
		}

		cmd := &main.ExtractCmd{
			URLs:        []string{"https://example.com/a", "https://example.com/b"},
			Extractor:   "trafilatura",
			Concurrency: 1,
		}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "Extracting 2 pages")
		assert.Equal(t, 2, strings.Count(out, "## Page Title"))
		assert.Contains(t, out, "body text")

		require.NotNil(t, update.Status)
		assert.Equal(t, domsift.RunStatusCompleted, *update.Status)
		require.NotNil(t, update.Documents)
		assert.Equal(t, 2, *update.Documents)
	})

	t.Run("discovers site URLs through the sitemap", func(t *testing.T) {
		t.Parallel()

		var gotBase string
		var gotFilter *domsift.URLFilter
		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, baseURL string, filter *domsift.URLFilter) ([]string, error) {
				gotBase = baseURL
				gotFilter = filter
				return []string{"https://example.com/docs/intro"}, nil
			},
		}

		runner := okExtractRunner()
		runner.Sitemaps = sitemaps
		// Untitled pages fall back to URL headers, making the
		// discovered URL visible in the preview.
		runner.Extractor = &mock.Extractor{
			ExtractFn: func(html string) (*domsift.ExtractResult, error) {
				return &domsift.ExtractResult{ContentHTML: "<p>body</p>"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runner: runner,
		}

		cmd := &main.ExtractCmd{
			Site:      "https://example.com",
			Filter:    []string{"/docs/"},
			Extractor: "trafilatura",
		}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, "https://example.com", gotBase)
		require.NotNil(t, gotFilter)
		require.Len(t, gotFilter.Include, 1)
		assert.True(t, gotFilter.Match("https://example.com/docs/intro"))
		assert.False(t, gotFilter.Match("https://example.com/blog/post"))
		assert.Contains(t, stdout.String(), "## https://example.com/docs/intro")
	})

	t.Run("saves pages when --out is set", func(t *testing.T) {
		t.Parallel()

		var saved []*domsift.Page
		runner := okExtractRunner()
		runner.Pages = &mock.PageStore{
			SaveFn: func(_ context.Context, page *domsift.Page) error {
				saved = append(saved, page)
				return nil
			},
			CommitFn: func() error { return nil },
			AbortFn:  func() error { return nil },
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runner: runner,
		}

		cmd := &main.ExtractCmd{
			URLs:      []string{"https://example.com/a"},
			Extractor: "trafilatura",
			Out:       "pages",
		}
		require.NoError(t, cmd.Run(deps))

		require.Len(t, saved, 1)
		assert.Equal(t, "https://example.com/a", saved[0].URL)
		assert.Contains(t, stdout.String(), "Saved 1 pages to pages")
		assert.NotContains(t, stdout.String(), "## Page Title", "saved pages should not also print")
	})

	t.Run("reports failed pages", func(t *testing.T) {
		t.Parallel()

		runner := okExtractRunner()
		runner.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "https://example.com/bad" {
					return "", domsift.Errorf(domsift.EINTERNAL, "connection refused")
				}
				return "<html>ok</html>", nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Runner: runner,
		}

		cmd := &main.ExtractCmd{
			URLs:      []string{"https://example.com/good", "https://example.com/bad"},
			Extractor: "trafilatura",
		}
		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stderr.String(), "skip https://example.com/bad")
		assert.Contains(t, stdout.String(), "1 pages failed")
	})

	t.Run("rejects an invalid filter pattern", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Runner: okExtractRunner(),
		}

		cmd := &main.ExtractCmd{
			Site:   "https://example.com",
			Filter: []string{"[invalid"},
		}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "invalid filter pattern")
	})

	t.Run("requires URLs or --site", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Runner: okExtractRunner(),
		}

		err := (&main.ExtractCmd{}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, domsift.EINVALID, domsift.ErrorCode(err))
	})

	t.Run("requires a configured runner", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		err := (&main.ExtractCmd{URLs: []string{"https://example.com"}}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, domsift.EINTERNAL, domsift.ErrorCode(err))
	})
}
