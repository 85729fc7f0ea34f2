// Package dtree provides a CART decision tree block classifier.
package dtree

import (
	"context"
	"encoding/gob"
	"math"
	"math/rand"
	"sort"

	"github.com/fwojciec/domsift"
)

func init() {
	gob.Register(&Classifier{})
}

// Compile-time interface verification.
var (
	_ domsift.Estimator        = (*Classifier)(nil)
	_ domsift.EstimatorFactory = Factory{}
)

// Node is one splitting decision of the form "x[FeatureIndex] < Threshold".
type Node struct {
	// FeatureIndex indicates which feature is used in this decision.
	FeatureIndex int
	// Threshold is the cutoff value between the left and right subtrees.
	Threshold float64
	// LeftChild is the index of the left subtree node, or of a leaf bin
	// when LeftIsLeaf is set.
	LeftChild  int
	LeftIsLeaf bool
	// RightChild is the index of the right subtree node, or of a leaf
	// bin when RightIsLeaf is set.
	RightChild  int
	RightIsLeaf bool
}

// Model is a fitted decision tree. Nodes is a flat list with the root
// at index 0; leaf indices point into Outputs, which holds the
// content-class fraction of the training rows that reached each leaf.
// A tree with no Nodes is a single leaf.
type Model struct {
	Nodes       []Node
	Outputs     []float64
	FeatureSize int
	Depth       int
}

// Bin drops a feature vector down the tree and returns the index of
// the leaf bin it ends up in.
func (m *Model) Bin(row []float64) int {
	if len(m.Nodes) == 0 {
		return 0
	}
	cur := m.Nodes[0]
	for i := 0; i < m.Depth; i++ {
		if row[cur.FeatureIndex] < cur.Threshold {
			if cur.LeftIsLeaf {
				return cur.LeftChild
			}
			cur = m.Nodes[cur.LeftChild]
		} else {
			if cur.RightIsLeaf {
				return cur.RightChild
			}
			cur = m.Nodes[cur.RightChild]
		}
	}
	panic("dtree: tree traversal did not terminate")
}

// Evaluate returns the content-class fraction of the leaf a row
// reaches.
func (m *Model) Evaluate(row []float64) float64 {
	return m.Outputs[m.Bin(row)]
}

// Default hyperparameters.
const (
	DefaultMaxDepth        = 10
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
)

// Classifier is a CART decision tree classifier minimizing Gini
// impurity. The zero value uses the default hyperparameters; Fit must
// be called before Predict or Score.
type Classifier struct {
	// MaxDepth bounds the depth of any leaf.
	MaxDepth int

	// MinSamplesSplit is the minimum number of rows a node needs to be
	// considered for splitting.
	MinSamplesSplit int

	// MinSamplesLeaf is the minimum number of rows each side of a
	// split must keep.
	MinSamplesLeaf int

	// MaxFeatures is the fraction of features considered at each
	// split. Zero or one considers every feature; anything below one
	// samples a random subset per split.
	MaxFeatures float64

	// Seed seeds feature subsampling.
	Seed int64

	// Model holds the fitted tree.
	Model *Model
}

// Fit grows a tree on x and y. Labels above 0.5 are treated as the
// content class. Refitting replaces the previous model.
func (c *Classifier) Fit(ctx context.Context, x domsift.Matrix, y []float64) error {
	n, d := x.Rows(), x.Cols()
	if n == 0 {
		return domsift.Errorf(domsift.EINVALID, "cannot fit on an empty matrix")
	}
	if n != len(y) {
		return domsift.Errorf(domsift.EINVALID, "matrix has %d rows but %d labels given", n, len(y))
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = append([]float64(nil), x.Row(i)...)
	}

	maxDepth := c.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	minSplit := c.MinSamplesSplit
	if minSplit < 2 {
		minSplit = DefaultMinSamplesSplit
	}
	minLeaf := c.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = DefaultMinSamplesLeaf
	}
	features := d
	if c.MaxFeatures > 0 && c.MaxFeatures < 1 {
		features = int(math.Ceil(c.MaxFeatures * float64(d)))
		if features < 1 {
			features = 1
		}
	}

	b := &builder{
		ctx:      ctx,
		rows:     rows,
		y:        y,
		d:        d,
		maxDepth: maxDepth,
		minSplit: minSplit,
		minLeaf:  minLeaf,
		features: features,
		rng:      rand.New(rand.NewSource(c.Seed)),
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if _, _, err := b.build(idx, 0); err != nil {
		return err
	}

	c.Model = &Model{
		Nodes:       b.nodes,
		Outputs:     b.outputs,
		FeatureSize: d,
		Depth:       b.depth,
	}
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
// estimated as the content fraction of the leaf the row reaches.
func (c *Classifier) Proba(x domsift.Matrix) ([]float64, error) {
	if c.Model == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "classifier is not fitted")
	}
	if x.Cols() != c.Model.FeatureSize {
		return nil, domsift.Errorf(domsift.EINVALID, "matrix has %d columns, model was fitted on %d", x.Cols(), c.Model.FeatureSize)
	}
	out := make([]float64, x.Rows())
	for i := range out {
		out[i] = c.Model.Evaluate(x.Row(i))
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

// builder grows a tree over materialized rows.
type builder struct {
	ctx      context.Context
	rows     [][]float64
	y        []float64
	d        int
	maxDepth int
	minSplit int
	minLeaf  int
	features int
	rng      *rand.Rand
	nodes    []Node
	outputs  []float64
	depth    int
}

// build grows the subtree over the given rows. The returned index
// points into nodes, or into outputs when isLeaf is set.
func (b *builder) build(idx []int, depth int) (child int, isLeaf bool, err error) {
	if err := b.ctx.Err(); err != nil {
		return 0, false, err
	}

	pos := 0
	for _, i := range idx {
		if b.y[i] > 0.5 {
			pos++
		}
	}

	if depth >= b.maxDepth || len(idx) < b.minSplit || pos == 0 || pos == len(idx) {
		return b.leaf(idx, pos, depth), true, nil
	}

	feature, threshold, ok := b.bestSplit(idx, pos)
	if !ok {
		return b.leaf(idx, pos, depth), true, nil
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node := len(b.nodes)
	b.nodes = append(b.nodes, Node{FeatureIndex: feature, Threshold: threshold})

	leftChild, leftLeaf, err := b.build(left, depth+1)
	if err != nil {
		return 0, false, err
	}
	rightChild, rightLeaf, err := b.build(right, depth+1)
	if err != nil {
		return 0, false, err
	}

	b.nodes[node].LeftChild = leftChild
	b.nodes[node].LeftIsLeaf = leftLeaf
	b.nodes[node].RightChild = rightChild
	b.nodes[node].RightIsLeaf = rightLeaf
	return node, false, nil
}

// leaf records a leaf bin holding the content fraction of its rows.
func (b *builder) leaf(idx []int, pos, depth int) int {
	if depth > b.depth {
		b.depth = depth
	}
	b.outputs = append(b.outputs, float64(pos)/float64(len(idx)))
	return len(b.outputs) - 1
}

// bestSplit finds the feature and threshold minimizing the weighted
// Gini impurity of the resulting partition. ok is false when no valid
// split exists.
func (b *builder) bestSplit(idx []int, pos int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	order := make([]int, n)
	best := math.Inf(1)

	for _, f := range b.candidateFeatures() {
		copy(order, idx)
		sort.Slice(order, func(i, j int) bool {
			return b.rows[order[i]][f] < b.rows[order[j]][f]
		})

		leftN, leftPos := 0, 0
		for k := 0; k < n-1; k++ {
			i := order[k]
			leftN++
			if b.y[i] > 0.5 {
				leftPos++
			}
			v, next := b.rows[i][f], b.rows[order[k+1]][f]
			if v == next {
				continue
			}
			if leftN < b.minLeaf || n-leftN < b.minLeaf {
				continue
			}
			impurity := weightedGini(leftPos, leftN, pos-leftPos, n-leftN)
			if impurity < best {
				best = impurity
				feature = f
				threshold = v + (next-v)/2
			}
		}
	}
	return feature, threshold, !math.IsInf(best, 1)
}

// candidateFeatures returns the features considered at one split.
func (b *builder) candidateFeatures() []int {
	if b.features >= b.d {
		features := make([]int, b.d)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return b.rng.Perm(b.d)[:b.features]
}

// weightedGini returns the size-weighted Gini impurity of a two-way
// partition.
func weightedGini(leftPos, leftN, rightPos, rightN int) float64 {
	total := float64(leftN + rightN)
	return float64(leftN)/total*gini(leftPos, leftN) + float64(rightN)/total*gini(rightPos, rightN)
}

// gini returns the Gini impurity of a node with pos positives among n
// rows.
func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// Factory builds decision tree classifiers for the registry.
type Factory struct{}

// Name returns the estimator family name.
func (Factory) Name() string { return "tree" }

// New builds a classifier from hyperparameters. Recognized parameters:
// max_depth, min_samples_split, min_samples_leaf, max_features, seed.
func (Factory) New(params domsift.Params) (domsift.Estimator, error) {
	if err := params.Check("max_depth", "min_samples_split", "min_samples_leaf", "max_features", "seed"); err != nil {
		return nil, err
	}
	maxDepth := params.Int("max_depth", DefaultMaxDepth)
	if maxDepth < 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter max_depth must be at least 1, got %d", maxDepth)
	}
	minSplit := params.Int("min_samples_split", DefaultMinSamplesSplit)
	if minSplit < 2 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter min_samples_split must be at least 2, got %d", minSplit)
	}
	minLeaf := params.Int("min_samples_leaf", DefaultMinSamplesLeaf)
	if minLeaf < 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter min_samples_leaf must be at least 1, got %d", minLeaf)
	}
	maxFeatures := params.Float("max_features", 1)
	if maxFeatures <= 0 || maxFeatures > 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter max_features must be in (0, 1], got %v", maxFeatures)
	}
	return &Classifier{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSplit,
		MinSamplesLeaf:  minLeaf,
		MaxFeatures:     maxFeatures,
		Seed:            int64(params.Int("seed", 0)),
	}, nil
}
