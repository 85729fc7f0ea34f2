// Package extract runs content extraction over live pages. It
// coordinates URL discovery, fetching, extraction, markdown conversion
// and storage of the results.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/fwojciec/domsift"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the worker count used when Runner.Concurrency
// is unset.
const DefaultConcurrency = 10

// Runner coordinates extraction across a set of URLs.
type Runner struct {
	Sitemaps    domsift.SitemapService
	Fetcher     domsift.Fetcher
	Extractor   domsift.Extractor
	Converter   domsift.Converter
	Pages       domsift.PageStore     // optional, nil skips persistence
	RateLimiter domsift.DomainLimiter // optional
	Concurrency int
}

// Result holds the outcome of an extraction run.
type Result struct {
	// Pages holds the successfully extracted pages in input order.
	Pages  []*domsift.Page
	Saved  int
	Failed int
	Bytes  int
}

// ProgressEvent reports progress during an extraction run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting extraction progress.
type ProgressFunc func(event ProgressEvent)

// extractResult holds the outcome of processing a single URL.
type extractResult struct {
	position int
	url      string
	page     *domsift.Page
	err      error
}

// RunSite discovers a site's URLs from its sitemap and extracts every
// one of them. Returns ENOTFOUND when the sitemap yields no URLs.
func (r *Runner) RunSite(ctx context.Context, baseURL string, filter *domsift.URLFilter, progress ProgressFunc) (*Result, error) {
	if r.Sitemaps == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "sitemap service required")
	}

	urls, err := r.Sitemaps.DiscoverURLs(ctx, baseURL, filter)
	if err != nil {
		return nil, fmt.Errorf("sitemap discovery: %w", err)
	}
	if len(urls) == 0 {
		return nil, domsift.Errorf(domsift.ENOTFOUND, "no urls discovered for %s", baseURL)
	}

	return r.Run(ctx, urls, progress)
}

// Run extracts every URL and returns the collected pages. A URL that
// fails contributes no page, increments Result.Failed, and never stops
// its siblings. When a page store is configured the successful pages
// are saved and committed as one atomic batch. The progress callback,
// if provided, receives events as extraction proceeds.
func (r *Runner) Run(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	if r.Fetcher == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "fetcher required")
	}
	if r.Extractor == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "extractor required")
	}
	if r.Converter == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "converter required")
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(urls)
	resultCh := make(chan extractResult, total)

	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, pageURL := range urls {
			i, pageURL := i, pageURL
			g.Go(func() error {
				resultCh <- r.processURL(gctx, i, pageURL)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	res := &Result{}

	// Collect results in input order.
	results := make([]extractResult, total)
	for result := range resultCh {
		completed.Add(1)
		results[result.position] = result

		if result.err != nil {
			res.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       result.url,
					Error:     result.err,
				})
			}
			continue
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       result.url,
			})
		}
	}

	for _, result := range results {
		if result.err != nil {
			continue
		}
		res.Pages = append(res.Pages, result.page)
		res.Bytes += len(result.page.Content)
	}

	if r.Pages != nil {
		for _, page := range res.Pages {
			if err := r.Pages.Save(ctx, page); err != nil {
				res.Failed++
				continue
			}
			res.Saved++
		}
		if res.Saved > 0 {
			if err := r.Pages.Commit(); err != nil {
				return nil, err
			}
		} else {
			_ = r.Pages.Abort()
		}
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return res, nil
}

// processURL fetches, extracts and converts a single URL.
func (r *Runner) processURL(ctx context.Context, position int, pageURL string) extractResult {
	result := extractResult{position: position, url: pageURL}

	if err := ctx.Err(); err != nil {
		result.err = err
		return result
	}

	if r.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			result.err = domsift.Errorf(domsift.EINVALID, "parse url %q: %v", pageURL, err)
			return result
		}
		if err := r.RateLimiter.Wait(ctx, u.Host); err != nil {
			result.err = err
			return result
		}
	}

	html, err := r.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		result.err = err
		return result
	}

	extracted, err := r.Extractor.Extract(html)
	if err != nil {
		result.err = err
		return result
	}

	markdown, err := r.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		result.err = err
		return result
	}

	result.page = &domsift.Page{
		URL:     pageURL,
		Title:   extracted.Title,
		Content: markdown,
	}
	return result
}
