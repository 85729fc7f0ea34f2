package domsift

// Document represents a single raw HTML page to be featurized.
type Document struct {
	// URL identifies the page. All blocks extracted from the page carry
	// it, and dataset splits group rows by it so blocks from one page
	// never land on both sides of a split.
	URL string `json:"url"`

	// HTML is the raw page markup.
	HTML string `json:"html"`

	// Content optionally holds the gold-standard main content text.
	// When present, extracted blocks are labeled by token overlap with
	// it; when absent, blocks are labeled unknown.
	Content string `json:"content"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.HTML == "" {
		return Errorf(EINVALID, "document HTML required")
	}
	return nil
}

// Label values assigned to blocks.
const (
	// LabelUnknown marks blocks from documents without gold content.
	LabelUnknown = -1
	// LabelBoilerplate marks navigation, ads, footers and similar chrome.
	LabelBoilerplate = 0
	// LabelContent marks main content.
	LabelContent = 1
)

// Block is one candidate content region extracted from a page's DOM.
// A block is rooted at a text-bearing element and owns the text of its
// root, excluding text claimed by nested blocks.
type Block struct {
	// URL of the page the block came from.
	URL string `json:"url"`

	// Path locates the block's root element within the page,
	// e.g. "/html[1]/body[1]/div[2]/p[1]".
	Path string `json:"path"`

	// Text is the block's own text with whitespace collapsed.
	Text string `json:"text"`

	// LinkText is the subset of Text found inside anchor elements.
	LinkText string `json:"linkText"`

	// CSS holds style-related attributes of the block's root element:
	// its id, its class list, and declarations parsed from the style
	// attribute.
	CSS map[string]string `json:"css,omitempty"`

	// Label is LabelContent, LabelBoilerplate or LabelUnknown.
	Label int `json:"label"`

	// Features holds the block's feature values, ordered to match the
	// Columns of the FeatureTable that produced it.
	Features []float64 `json:"features"`
}
