// Package blockmodel implements domsift.Extractor by applying a
// trained block classifier. The page is featurized with the schema the
// model was fitted on, every block is classified, and the regions
// predicted as content are rendered back out in document order.
package blockmodel

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/domsift"
	"golang.org/x/net/html"
)

// applyURL identifies documents built from raw HTML. Features never
// depend on the URL, it only labels the blocks.
const applyURL = "about:blank"

// Ensure Extractor implements domsift.Extractor at compile time.
var _ domsift.Extractor = (*Extractor)(nil)

// Extractor extracts main content by classifying page blocks with a
// trained model.
type Extractor struct {
	model      *domsift.Model
	featurizer domsift.Featurizer
}

// NewExtractor creates an Extractor from a trained model and the
// featurizer that produces its input. Returns ESCHEMA if the
// featurizer's schema disagrees with the columns the model was
// fitted on.
func NewExtractor(model *domsift.Model, featurizer domsift.Featurizer) (*Extractor, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if featurizer == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "featurizer required")
	}
	cols := featurizer.Columns()
	if len(cols) != len(model.Columns) {
		return nil, domsift.Errorf(domsift.ESCHEMA, "featurizer emits %d columns, model was fitted on %d", len(cols), len(model.Columns))
	}
	for i, col := range model.Columns {
		if cols[i] != col {
			return nil, domsift.Errorf(domsift.ESCHEMA, "column %d is %q, model expects %q", i, cols[i], col)
		}
	}
	return &Extractor{model: model, featurizer: featurizer}, nil
}

// Extract classifies every block of the page and returns the regions
// predicted as content. A block nested inside another kept block is
// dropped, since its markup is already part of the ancestor's render.
func (e *Extractor) Extract(rawHTML string) (*domsift.ExtractResult, error) {
	if rawHTML == "" {
		return nil, domsift.Errorf(domsift.EINVALID, "empty HTML input")
	}

	table, err := e.featurizer.Featurize(&domsift.Document{URL: applyURL, HTML: rawHTML})
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "parsing page: %v", err)
	}

	result := &domsift.ExtractResult{Title: pageTitle(root)}
	if len(table.Blocks) == 0 {
		return result, nil
	}

	data := make([]float64, 0, len(table.Blocks)*len(table.Columns))
	for _, block := range table.Blocks {
		if len(block.Features) != len(table.Columns) {
			return nil, domsift.Errorf(domsift.ESCHEMA, "block %s has %d features, schema has %d columns", block.Path, len(block.Features), len(table.Columns))
		}
		data = append(data, block.Features...)
	}

	preds, err := e.model.Estimator.Predict(domsift.NewDense(len(table.Blocks), len(table.Columns), data))
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(table.Blocks))
	for _, block := range contentBlocks(table.Blocks, preds) {
		n := nodeAt(root, block.Path)
		if n == nil {
			return nil, domsift.Errorf(domsift.EINTERNAL, "block %s not found in parsed page", block.Path)
		}
		rendered, err := renderNode(n)
		if err != nil {
			return nil, err
		}
		parts = append(parts, rendered)
	}
	result.ContentHTML = strings.Join(parts, "\n")
	return result, nil
}

// contentBlocks returns the blocks predicted as content, minus any
// block nested under one already kept. Blocks arrive in pre-order, so
// a subtree is contiguous and only the most recently kept path can
// contain the current block.
func contentBlocks(blocks []*domsift.Block, preds []float64) []*domsift.Block {
	var kept []*domsift.Block
	for i, block := range blocks {
		if preds[i] != domsift.LabelContent {
			continue
		}
		if n := len(kept); n > 0 && strings.HasPrefix(block.Path, kept[n-1].Path+"/") {
			continue
		}
		kept = append(kept, block)
	}
	return kept
}

// nodeAt resolves a block path recorded during featurization back to
// its element in a freshly parsed tree. Each segment addresses the
// n-th child element with the segment's tag.
func nodeAt(root *html.Node, path string) *html.Node {
	cur := root
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		tag, idx, ok := cutSegment(seg)
		if !ok {
			return nil
		}
		cur = childElement(cur, tag, idx)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// cutSegment splits a path segment like "div[2]" into its tag and
// 1-based index.
func cutSegment(seg string) (tag string, idx int, ok bool) {
	open := strings.IndexByte(seg, '[')
	if open <= 0 || !strings.HasSuffix(seg, "]") {
		return "", 0, false
	}
	idx, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || idx < 1 {
		return "", 0, false
	}
	return seg[:open], idx, true
}

// childElement returns the idx-th element child of n with the given
// tag, counting from 1.
func childElement(n *html.Node, tag string, idx int) *html.Node {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != tag {
			continue
		}
		count++
		if count == idx {
			return c
		}
	}
	return nil
}

// pageTitle returns the page title from metadata, preferring the
// og:title property over the title element.
func pageTitle(root *html.Node) string {
	doc := goquery.NewDocumentFromNode(root)
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
