package domsift

import "context"

// Fetcher retrieves the HTML of a page. The plain-HTTP implementation
// returns the markup as served; the browser-backed one returns the DOM
// after scripts have run, which is what feature extraction needs on
// client-rendered sites.
type Fetcher interface {
	// Fetch returns the page's HTML. The context bounds the whole
	// operation, including any rendering.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases whatever the implementation holds open, such as a
	// browser process. Callers must invoke it once fetching is done.
	Close() error
}
