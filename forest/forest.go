// Package forest provides a bagged ensemble of decision trees.
// Each tree is trained on a bootstrap sample of the rows with a random
// feature subset per split, and prediction averages the trees.
package forest

import (
	"context"
	"encoding/gob"
	"math"
	"math/rand"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/dtree"
)

func init() {
	gob.Register(&Classifier{})
}

// Compile-time interface verification.
var (
	_ domsift.Estimator        = (*Classifier)(nil)
	_ domsift.EstimatorFactory = Factory{}
)

// DefaultNEstimators is the tree count used when NEstimators is unset.
const DefaultNEstimators = 100

// Model is a fitted forest.
type Model struct {
	Trees       []*dtree.Model
	FeatureSize int
}

// Classifier is a random forest classifier. The zero value uses the
// default hyperparameters; Fit must be called before Predict or Score.
type Classifier struct {
	// NEstimators is the number of trees.
	NEstimators int

	// MaxDepth, MinSamplesSplit and MinSamplesLeaf are passed through
	// to each tree; zero values use the dtree defaults.
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int

	// MaxFeatures is the fraction of features each split considers.
	// Zero uses sqrt(d) features, the usual forest heuristic.
	MaxFeatures float64

	// Seed seeds bootstrap sampling and per-tree feature subsampling.
	Seed int64

	// Model holds the fitted trees.
	Model *Model
}

// Fit trains the forest on x and y. Labels above 0.5 are treated as
// the content class. Refitting replaces the previous model.
func (c *Classifier) Fit(ctx context.Context, x domsift.Matrix, y []float64) error {
	n, d := x.Rows(), x.Cols()
	if n == 0 {
		return domsift.Errorf(domsift.EINVALID, "cannot fit on an empty matrix")
	}
	if n != len(y) {
		return domsift.Errorf(domsift.EINVALID, "matrix has %d rows but %d labels given", n, len(y))
	}

	trees := c.NEstimators
	if trees <= 0 {
		trees = DefaultNEstimators
	}
	maxFeatures := c.MaxFeatures
	if maxFeatures <= 0 && d > 0 {
		maxFeatures = math.Sqrt(float64(d)) / float64(d)
	}

	rng := rand.New(rand.NewSource(c.Seed))
	model := &Model{Trees: make([]*dtree.Model, 0, trees), FeatureSize: d}

	for t := 0; t < trees; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		tree := &dtree.Classifier{
			MaxDepth:        c.MaxDepth,
			MinSamplesSplit: c.MinSamplesSplit,
			MinSamplesLeaf:  c.MinSamplesLeaf,
			MaxFeatures:     maxFeatures,
			Seed:            rng.Int63(),
		}
		if err := tree.Fit(ctx, domsift.SubsetRows(x, sample), domsift.SubsetFloats(y, sample)); err != nil {
			return err
		}
		model.Trees = append(model.Trees, tree.Model)
	}

	c.Model = model
	return nil
}

// Predict returns a hard 0/1 label for each row of x.
func (c *Classifier) Predict(x domsift.Matrix) ([]float64, error) {
	proba, err := c.Proba(x)
	if err != nil {
		return nil, err
	}
	for i, p := range proba {
		if p > 0.5 {
			proba[i] = 1
		} else {
			proba[i] = 0
		}
	}
	return proba, nil
}

// Proba returns the content-class probability for each row of x,
// averaged across the trees.
func (c *Classifier) Proba(x domsift.Matrix) ([]float64, error) {
	if c.Model == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "classifier is not fitted")
	}
	if x.Cols() != c.Model.FeatureSize {
		return nil, domsift.Errorf(domsift.EINVALID, "matrix has %d columns, model was fitted on %d", x.Cols(), c.Model.FeatureSize)
	}
	out := make([]float64, x.Rows())
	for i := range out {
		row := x.Row(i)
		var sum float64
		for _, tree := range c.Model.Trees {
			sum += tree.Evaluate(row)
		}
		out[i] = sum / float64(len(c.Model.Trees))
	}
	return out, nil
}

// Score predicts labels for x and returns the mean accuracy against y.
func (c *Classifier) Score(x domsift.Matrix, y []float64) (float64, error) {
	pred, err := c.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(y) != len(pred) {
		return 0, domsift.Errorf(domsift.EINVALID, "matrix has %d rows but %d labels given", len(pred), len(y))
	}
	return domsift.Accuracy(y, pred), nil
}

// Factory builds forest classifiers for the registry.
type Factory struct{}

// Name returns the estimator family name.
func (Factory) Name() string { return "forest" }

// New builds a classifier from hyperparameters. Recognized parameters:
// n_estimators, max_depth, min_samples_split, min_samples_leaf,
// max_features, seed.
func (Factory) New(params domsift.Params) (domsift.Estimator, error) {
	if err := params.Check("n_estimators", "max_depth", "min_samples_split", "min_samples_leaf", "max_features", "seed"); err != nil {
		return nil, err
	}
	trees := params.Int("n_estimators", DefaultNEstimators)
	if trees < 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter n_estimators must be at least 1, got %d", trees)
	}
	maxDepth := params.Int("max_depth", dtree.DefaultMaxDepth)
	if maxDepth < 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter max_depth must be at least 1, got %d", maxDepth)
	}
	minSplit := params.Int("min_samples_split", dtree.DefaultMinSamplesSplit)
	if minSplit < 2 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter min_samples_split must be at least 2, got %d", minSplit)
	}
	minLeaf := params.Int("min_samples_leaf", dtree.DefaultMinSamplesLeaf)
	if minLeaf < 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter min_samples_leaf must be at least 1, got %d", minLeaf)
	}
	maxFeatures := params.Float("max_features", 0)
	if maxFeatures < 0 || maxFeatures > 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter max_features must be in [0, 1], got %v", maxFeatures)
	}
	return &Classifier{
		NEstimators:     trees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSplit,
		MinSamplesLeaf:  minLeaf,
		MaxFeatures:     maxFeatures,
		Seed:            int64(params.Int("seed", 0)),
	}, nil
}
