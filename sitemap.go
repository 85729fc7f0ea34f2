package domsift

import (
	"context"
	"regexp"
)

// SitemapService discovers the page URLs a site advertises.
type SitemapService interface {
	// DiscoverURLs returns the page URLs listed by the site's sitemaps,
	// consulting robots.txt first and falling back to /sitemap.xml.
	// Sitemap indexes are followed to the urlsets they reference.
	//
	// A nil filter keeps every URL.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter selects URLs by regular expression.
type URLFilter struct {
	// Include, when non-empty, admits only URLs matching at least one
	// pattern.
	Include []*regexp.Regexp

	// Exclude rejects URLs matching any pattern. It applies after
	// Include.
	Exclude []*regexp.Regexp
}

// NewURLFilter compiles include and exclude patterns into a URLFilter.
// Returns EINVALID naming the first pattern that fails to compile. Empty
// lists yield a filter that admits everything.
func NewURLFilter(include, exclude []string) (*URLFilter, error) {
	compile := func(patterns []string) ([]*regexp.Regexp, error) {
		res := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, Errorf(EINVALID, "invalid filter pattern %q: %v", p, err)
			}
			res = append(res, re)
		}
		return res, nil
	}

	f := &URLFilter{}
	var err error
	if f.Include, err = compile(include); err != nil {
		return nil, err
	}
	if f.Exclude, err = compile(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

// Match reports whether the URL passes the filter. A nil filter admits
// every URL.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 && !matchesAny(f.Include, url) {
		return false
	}
	return !matchesAny(f.Exclude, url)
}

func matchesAny(patterns []*regexp.Regexp, url string) bool {
	for _, re := range patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
