// Package trafilatura implements domsift.Extractor with go-trafilatura's
// rule-based content detection. It is one of the heuristic baselines a
// trained block model is measured against.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/domsift"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements domsift.Extractor at compile time.
var _ domsift.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's main content and metadata title.
func (e *Extractor) Extract(rawHTML string) (*domsift.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, domsift.Errorf(domsift.EINVALID, "empty HTML input")
	}

	// EnableFallback engages the secondary readability and DOM heuristics
	// when the precision rules find nothing, so thin pages still yield a
	// result.
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &domsift.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}
