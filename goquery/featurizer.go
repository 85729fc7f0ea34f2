// Package goquery extracts block-level DOM neighborhood features from
// HTML pages using goquery.
//
// A block is rooted at an element that owns non-trivial text: its direct
// text children plus text reached through inline descendants, stopping
// at block-level boundaries. Each block's feature vector combines
// intrinsic attributes with aggregates over its ancestors (bounded by
// depth), its descendant subtree and its siblings (bounded by height).
package goquery

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/domsift"
	"golang.org/x/net/html"
)

// Default neighborhood bounds.
const (
	DefaultDepth  = 5
	DefaultHeight = 5
)

// labelThreshold is the fraction of a block's tokens that must appear in
// the gold content for the block to be labeled content.
const labelThreshold = 0.5

// Ensure Featurizer implements domsift.Featurizer at compile time.
var _ domsift.Featurizer = (*Featurizer)(nil)

// Featurizer walks a parsed DOM and emits one feature vector per block.
// The zero value is not usable; create one with NewFeaturizer.
type Featurizer struct {
	depth      int
	height     int
	blocksOnly bool
	columns    []string
}

// Option configures a Featurizer.
type Option func(*Featurizer)

// WithDepth bounds how many ancestor hops contribute per-hop features.
// Defaults to DefaultDepth.
func WithDepth(n int) Option {
	return func(f *Featurizer) {
		f.depth = n
	}
}

// WithHeight bounds the descendant and sibling windows.
// Defaults to DefaultHeight.
func WithHeight(n int) Option {
	return func(f *Featurizer) {
		f.height = n
	}
}

// WithAllTags makes every text-owning element eligible, not just
// block-level tags.
func WithAllTags() Option {
	return func(f *Featurizer) {
		f.blocksOnly = false
	}
}

// NewFeaturizer creates a Featurizer. Returns EINVALID if a negative
// neighborhood bound is configured.
func NewFeaturizer(opts ...Option) (*Featurizer, error) {
	f := &Featurizer{
		depth:      DefaultDepth,
		height:     DefaultHeight,
		blocksOnly: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.depth < 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "depth is %d, must not be negative", f.depth)
	}
	if f.height < 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "height is %d, must not be negative", f.height)
	}
	f.columns = buildColumns(f.depth)
	return f, nil
}

// Columns returns the feature schema. Ancestor features are emitted per
// hop, so the schema grows with depth; height bounds window contents
// without adding columns.
func (f *Featurizer) Columns() []string {
	return f.columns
}

// Featurize parses the document and returns one block per eligible
// element, in document order. The same document and configuration
// always produce identical output.
func (f *Featurizer) Featurize(doc *domsift.Document) (*domsift.FeatureTable, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "parsing %s: %v", doc.URL, err)
	}
	body := parsed.Find("body")
	if len(body.Nodes) == 0 {
		return nil, domsift.Errorf(domsift.EPARSE, "parsing %s: no body element", doc.URL)
	}

	w := &walker{f: f, doc: doc, gold: goldTokens(doc.Content)}
	root := body.Nodes[0]
	w.walk(root, pathTo(root))

	return &domsift.FeatureTable{Columns: f.columns, Blocks: w.blocks}, nil
}

// walker accumulates blocks during one document traversal.
type walker struct {
	f      *Featurizer
	doc    *domsift.Document
	gold   map[string]struct{}
	blocks []*domsift.Block
}

// walk visits n and then its element children in document order. A node
// is eligible when it owns non-whitespace text; with blocksOnly only
// block-level tags qualify.
func (w *walker) walk(n *html.Node, path string) {
	if !w.f.blocksOnly || blockTags[n.Data] {
		if text, linkText := ownText(n); text != "" {
			w.emit(n, path, text, linkText)
		}
	}
	counts := map[string]int{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skipTags[c.Data] {
			continue
		}
		counts[c.Data]++
		w.walk(c, path+"/"+c.Data+"["+strconv.Itoa(counts[c.Data])+"]")
	}
}

func (w *walker) emit(n *html.Node, path, text, linkText string) {
	block := &domsift.Block{
		URL:      w.doc.URL,
		Path:     path,
		Text:     text,
		LinkText: linkText,
		CSS:      cssAttrs(n),
		Label:    label(text, w.gold),
		Features: w.f.features(n, path, text, linkText),
	}
	w.blocks = append(w.blocks, block)
}

// ownText returns the collapsed text n owns and the subset of it inside
// anchors. Ownership descends through inline elements only: block-level
// tags below n are boundaries claimed by their own blocks.
func ownText(n *html.Node) (text, linkText string) {
	var all, links strings.Builder
	collectOwnText(n, false, &all, &links)
	return collapse(all.String()), collapse(links.String())
}

func collectOwnText(n *html.Node, inAnchor bool, all, links *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			all.WriteString(c.Data)
			all.WriteByte(' ')
			if inAnchor {
				links.WriteString(c.Data)
				links.WriteByte(' ')
			}
		case html.ElementNode:
			if skipTags[c.Data] || blockTags[c.Data] {
				continue
			}
			collectOwnText(c, inAnchor || c.Data == "a", all, links)
		}
	}
}

// goldTokens returns the token set of the gold content, or nil when no
// gold content is available.
func goldTokens(content string) map[string]struct{} {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, tok := range fields {
		set[tok] = struct{}{}
	}
	return set
}

// label assigns LabelContent when at least half of the block's tokens
// appear in the gold content, LabelUnknown when no gold content exists.
func label(text string, gold map[string]struct{}) int {
	if gold == nil {
		return domsift.LabelUnknown
	}
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return domsift.LabelBoilerplate
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := gold[tok]; ok {
			hits++
		}
	}
	if float64(hits)/float64(len(tokens)) >= labelThreshold {
		return domsift.LabelContent
	}
	return domsift.LabelBoilerplate
}

// cssAttrs collects the block root's style-related attributes: id,
// class and the declarations of its style attribute.
func cssAttrs(n *html.Node) map[string]string {
	css := map[string]string{}
	for _, a := range n.Attr {
		switch a.Key {
		case "id", "class":
			if a.Val != "" {
				css[a.Key] = a.Val
			}
		case "style":
			for k, v := range parseStyle(a.Val) {
				css[k] = v
			}
		}
	}
	if len(css) == 0 {
		return nil
	}
	return css
}

// parseStyle parses inline style declarations. Malformed declarations
// are skipped.
func parseStyle(style string) map[string]string {
	decls := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k != "" && v != "" {
			decls[k] = v
		}
	}
	return decls
}

// pathTo builds the locator of n from the document root, counting each
// element's position among same-tag siblings, e.g. "/html[1]/body[1]".
func pathTo(n *html.Node) string {
	var segs []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		idx := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				idx++
			}
		}
		segs = append(segs, cur.Data+"["+strconv.Itoa(idx)+"]")
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}

// collapse trims and collapses runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// digitRatio returns the fraction of non-space characters that are
// digits.
func digitRatio(s string) float64 {
	total, digits := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
