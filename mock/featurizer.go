package mock

import "github.com/fwojciec/domsift"

var _ domsift.Featurizer = (*Featurizer)(nil)

// Featurizer is a mock implementation of domsift.Featurizer.
type Featurizer struct {
	FeaturizeFn func(doc *domsift.Document) (*domsift.FeatureTable, error)
	ColumnsFn   func() []string
}

func (f *Featurizer) Featurize(doc *domsift.Document) (*domsift.FeatureTable, error) {
	if f.FeaturizeFn == nil {
		panic("mock: FeaturizeFn not set")
	}
	return f.FeaturizeFn(doc)
}

func (f *Featurizer) Columns() []string {
	if f.ColumnsFn == nil {
		panic("mock: ColumnsFn not set")
	}
	return f.ColumnsFn()
}
