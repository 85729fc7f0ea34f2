// Package rod provides a browser-based implementation of domsift.Fetcher
// using Chrome automation, for pages that require JavaScript rendering.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/domsift"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout is the default per-fetch timeout.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements domsift.Fetcher at compile time.
var _ domsift.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The underlying browser is recycled periodically to bound Chrome's memory
// growth. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	session      *Session
	fetchTimeout time.Duration
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout applied to each Fetch call.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	session, err := NewSession()
	if err != nil {
		return nil, err
	}
	f.session = session

	return f, nil
}

// Fetch navigates to the URL, waits for the page to load, and returns the
// rendered HTML. Shadow DOM content is inlined into the serialized markup
// so that Web Component sites yield their actual content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", domsift.Errorf(domsift.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	html, err := f.render(ctx, url)
	if err != nil {
		// Rod wraps cancellation in its own error types; surface the
		// context error so callers can match on it.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}

	f.session.PageRendered()
	return html, nil
}

func (f *Fetcher) render(ctx context.Context, url string) (string, error) {
	browser := f.session.Acquire()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	result, err := page.Eval(serializeScript)
	if err != nil {
		return "", err
	}

	return result.Value.Str(), nil
}

// serializeScript walks the live DOM and emits HTML with shadow roots
// inlined into their host elements. page.HTML() skips shadow roots, so
// Web Component navigation and content would otherwise be invisible.
const serializeScript = `() => {
	const voidTags = new Set([
		"area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr",
	]);
	const escapeAttr = (v) => v.replace(/&/g, "&amp;").replace(/"/g, "&quot;");
	const serialize = (root) => {
		let html = "";
		for (const node of root.childNodes) {
			if (node.nodeType === Node.TEXT_NODE) {
				html += node.textContent;
			} else if (node.nodeType === Node.COMMENT_NODE) {
				html += "<!--" + node.textContent + "-->";
			} else if (node.nodeType === Node.ELEMENT_NODE) {
				const tag = node.tagName.toLowerCase();
				let attrs = "";
				for (const a of node.attributes) {
					attrs += " " + a.name + '="' + escapeAttr(a.value) + '"';
				}
				html += "<" + tag + attrs + ">";
				if (voidTags.has(tag)) {
					continue;
				}
				if (node.shadowRoot) {
					html += serialize(node.shadowRoot);
				}
				html += serialize(node) + "</" + tag + ">";
			}
		}
		return html;
	};
	const doctype = document.doctype ? "<!DOCTYPE " + document.doctype.name + ">\n" : "";
	return doctype + serialize(document);
}`

// PID reports the process ID of the underlying Chrome launcher. Tests use
// it to verify cleanup.
func (f *Fetcher) PID() int {
	return f.session.PID()
}

// Close releases browser resources. Close is safe to call multiple times;
// fetching after Close returns EINVALID.
func (f *Fetcher) Close() error {
	f.closed.Store(true)
	return f.session.Close()
}
