package mock

import "github.com/fwojciec/domsift"

var _ domsift.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of domsift.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*domsift.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*domsift.ExtractResult, error) {
	if e.ExtractFn == nil {
		panic("mock: ExtractFn not set")
	}
	return e.ExtractFn(html)
}
