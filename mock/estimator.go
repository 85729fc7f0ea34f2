package mock

import (
	"context"

	"github.com/fwojciec/domsift"
)

// Compile-time interface verification.
var (
	_ domsift.Estimator        = (*Estimator)(nil)
	_ domsift.EstimatorFactory = (*EstimatorFactory)(nil)
)

// Estimator is a mock implementation of domsift.Estimator.
type Estimator struct {
	FitFn     func(ctx context.Context, x domsift.Matrix, y []float64) error
	PredictFn func(x domsift.Matrix) ([]float64, error)
	ScoreFn   func(x domsift.Matrix, y []float64) (float64, error)
}

func (e *Estimator) Fit(ctx context.Context, x domsift.Matrix, y []float64) error {
	if e.FitFn == nil {
		panic("mock: FitFn not set")
	}
	return e.FitFn(ctx, x, y)
}

func (e *Estimator) Predict(x domsift.Matrix) ([]float64, error) {
	if e.PredictFn == nil {
		panic("mock: PredictFn not set")
	}
	return e.PredictFn(x)
}

func (e *Estimator) Score(x domsift.Matrix, y []float64) (float64, error) {
	if e.ScoreFn == nil {
		panic("mock: ScoreFn not set")
	}
	return e.ScoreFn(x, y)
}

// EstimatorFactory is a mock implementation of domsift.EstimatorFactory.
type EstimatorFactory struct {
	NameFn func() string
	NewFn  func(params domsift.Params) (domsift.Estimator, error)
}

func (f *EstimatorFactory) Name() string {
	if f.NameFn == nil {
		panic("mock: NameFn not set")
	}
	return f.NameFn()
}

func (f *EstimatorFactory) New(params domsift.Params) (domsift.Estimator, error) {
	if f.NewFn == nil {
		panic("mock: NewFn not set")
	}
	return f.NewFn(params)
}
