package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/domsift"
)

// Ensure SitemapService implements domsift.SitemapService.
var _ domsift.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from a site's sitemaps over HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService returns a SitemapService using client for all requests.
// A nil client means http.DefaultClient.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs walks the site's sitemaps and returns the page URLs they
// list, deduplicated in first-seen order. The result is empty, not nil,
// when the site publishes no sitemap.
//
// A base URL with a non-root path narrows the result to pages under that
// path, so https://example.com/docs/ discovers only the docs section.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *domsift.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	roots, err := s.sitemapRoots(ctx, base)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return []string{}, nil
	}

	pages, err := s.walkSitemaps(ctx, roots)
	if err != nil {
		return nil, err
	}

	section := base.Path
	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if section != "" && section != "/" && !underPath(page, section) {
			continue
		}
		if filter != nil && !filter.Match(page) {
			continue
		}
		kept = append(kept, page)
	}
	return kept, nil
}

// underPath reports whether the URL's path sits inside the section,
// respecting path boundaries: /docs covers /docs/ and /docs/intro but
// not /documentation.
func underPath(raw, section string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(section, "/") {
		section += "/"
	}
	return strings.HasPrefix(parsed.Path, section)
}

// sitemapRoots locates the site's top-level sitemaps: the Sitemap
// directives of robots.txt when present, otherwise /sitemap.xml when it
// answers 200. Sitemaps are served from the domain root regardless of
// the base path.
func (s *SitemapService) sitemapRoots(ctx context.Context, base *url.URL) ([]string, error) {
	origin := *base
	origin.Path = ""

	robots, err := s.robotsSitemaps(ctx, origin.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	if err == nil && len(robots) > 0 {
		return robots, nil
	}

	fallback := origin.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	ok, err := s.headOK(ctx, fallback)
	if err != nil {
		// A dead fallback probe means "no sitemap", not a failure, unless
		// the context itself is done.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if ok {
		return []string{fallback}, nil
	}
	return nil, nil
}

// robotsSitemaps returns the Sitemap directive values of robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < len(directive) || !strings.EqualFold(line[:len(directive)], directive) {
			continue
		}
		if value := strings.TrimSpace(line[len(directive):]); value != "" {
			sitemaps = append(sitemaps, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// walkSitemaps fetches every sitemap reachable from roots, following
// nested <sitemapindex> entries, and returns the page URLs in first-seen
// order. Each sitemap is fetched once no matter how many indexes list it.
func (s *SitemapService) walkSitemaps(ctx context.Context, roots []string) ([]string, error) {
	queue := append([]string(nil), roots...)
	visited := make(map[string]struct{})
	seen := make(map[string]struct{})
	var pages []string

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sitemapURL := queue[0]
		queue = queue[1:]
		if _, ok := visited[sitemapURL]; ok {
			continue
		}
		visited[sitemapURL] = struct{}{}

		urls, children, err := s.readSitemap(ctx, sitemapURL)
		if err != nil {
			return nil, err
		}
		queue = append(queue, children...)
		for _, u := range urls {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			pages = append(pages, u)
		}
	}
	return pages, nil
}

// readSitemap fetches and parses one sitemap document. A <sitemapindex>
// yields child sitemap URLs; anything else is treated as a <urlset> and
// yields page URLs.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string) (pages, children []string, err error) {
	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		return nil, locations(root, "sitemap"), nil
	}
	return locations(root, "url"), nil, nil
}

// locations collects the trimmed <loc> values of root's children with the
// given tag.
func locations(root *etree.Element, tag string) []string {
	var locs []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if text := strings.TrimSpace(loc.Text()); text != "" {
			locs = append(locs, text)
		}
	}
	return locs
}

// get issues a GET and returns the decoded body. Large sites commonly
// publish their sitemaps gzip-compressed under a .gz suffix; those are
// transparently decompressed.
func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}

	if isGzipped(resp, target) {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decompressing %s: %w", target, err)
		}
		return &gzipBody{gz: gz, body: resp.Body}, nil
	}
	return resp.Body, nil
}

// isGzipped reports whether the response carries a gzip file as content.
// Transfer-level compression is already undone by the transport; this
// detects sitemaps that are gzip files in their own right.
func isGzipped(resp *http.Response, target string) bool {
	if strings.Contains(resp.Header.Get("Content-Type"), "gzip") {
		return true
	}
	u, err := url.Parse(target)
	return err == nil && strings.HasSuffix(u.Path, ".gz")
}

type gzipBody struct {
	gz   *gzip.Reader
	body io.ReadCloser
}

func (b *gzipBody) Read(p []byte) (int, error) { return b.gz.Read(p) }

func (b *gzipBody) Close() error {
	err := b.gz.Close()
	if cerr := b.body.Close(); err == nil {
		err = cerr
	}
	return err
}

// headOK reports whether target answers 200 to a HEAD request.
func (s *SitemapService) headOK(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
