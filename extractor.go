package domsift

// ExtractResult is the main content pulled out of one page.
type ExtractResult struct {
	// Title comes from page metadata.
	Title string

	// ContentHTML is the main content with boilerplate stripped. The
	// element structure of what remains is preserved so it can still be
	// converted to Markdown.
	ContentHTML string
}

// Extractor separates a page's main content from its boilerplate. The
// heuristic implementations (trafilatura, readability) need no training;
// blockmodel applies a classifier trained on featurized blocks.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
