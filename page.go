package domsift

import "context"

// Page is one extracted page, ready for persistence: its URL, its
// metadata title, and its main content rendered as Markdown.
type Page struct {
	URL     string
	Title   string
	Content string
}

// PageStore persists extracted pages. Saves accumulate in a staging
// location until Commit publishes them all at once; Abort throws the
// staged work away. A run that fails partway therefore leaves no
// half-written output behind.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}
