// Package http implements page fetching and sitemap discovery over plain
// HTTP, for static sites that serve their content without JavaScript.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/domsift"
)

// DefaultFetchTimeout bounds a single page fetch. Kept consistent with
// rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read. Feature
// extraction works on page-sized documents; anything larger gets cut off.
const DefaultMaxBodyBytes = 10 << 20

// userAgent identifies the crawler to the sites it visits.
const userAgent = "domsift/1.0"

// Ensure Fetcher implements domsift.Fetcher at compile time.
var _ domsift.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page HTML with plain GET requests. It never executes
// JavaScript; sites that render client side need rod.Fetcher instead.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the per-request timeout.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes overrides the response size cap.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// NewFetcher returns a Fetcher with its own HTTP client.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch retrieves the page at url. Responses that are clearly not markup,
// like images or archives, return EINVALID rather than feeding binary
// noise into feature extraction.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	if ct := resp.Header.Get("Content-Type"); !looksLikeMarkup(ct) {
		return "", domsift.Errorf(domsift.EINVALID, "unsupported content type %q for %s", ct, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// looksLikeMarkup reports whether the content type could plausibly carry
// HTML. Servers are sloppy about types, so only clearly binary ones are
// rejected; an absent header passes.
func looksLikeMarkup(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}

// Close is a no-op; the underlying client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
