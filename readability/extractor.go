// Package readability provides a heuristic implementation of
// domsift.Extractor backed by go-readability, used as a baseline to
// compare trained block models against.
package readability

import (
	"strings"

	"github.com/fwojciec/domsift"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements domsift.Extractor at compile time.
var _ domsift.Extractor = (*Extractor)(nil)

// Extractor runs go-readability's scoring pass over a page.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's main content and metadata title. The
// content keeps its element structure for later Markdown conversion.
func (e *Extractor) Extract(rawHTML string) (*domsift.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, domsift.Errorf(domsift.EINVALID, "empty HTML input")
	}

	// The second argument is the page URL, used only to resolve
	// relative links; extraction works without it.
	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "readability: %v", err)
	}

	return &domsift.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
