// Package logreg provides a logistic regression block classifier
// trained with stochastic gradient descent.
package logreg

import (
	"context"
	"encoding/gob"
	"math"
	"math/rand"

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

// Model is the fitted state of a logistic regression classifier.
// Feature vectors are normalized as x = (x + Offset) * Scale before
// the linear score is computed.
type Model struct {
	Bias   float64
	Coefs  []float64
	Offset []float64
	Scale  []float64
}

// evaluate returns the probability that a raw feature vector belongs
// to the content class.
func (m *Model) evaluate(row []float64) float64 {
	z := m.Bias
	for j, v := range row {
		z += m.Coefs[j] * ((v + m.Offset[j]) * m.Scale[j])
	}
	return sigmoid(z)
}

// Classifier is a binary logistic regression classifier. The zero
// value uses the default hyperparameters; Fit must be called before
// Predict or Score.
type Classifier struct {
	// C is the inverse regularization strength. Smaller values shrink
	// the coefficients harder.
	C float64

	// Epochs is the number of passes over the training data.
	Epochs int

	// LearningRate is the constant gradient step size.
	LearningRate float64

	// Seed seeds the per-epoch row shuffle.
	Seed int64

	// Model holds the fitted coefficients.
	Model *Model
}

// Default hyperparameters.
const (
	DefaultC            = 1.0
	DefaultEpochs       = 100
	DefaultLearningRate = 0.1
)

// Fit trains the classifier on x and y. Labels above 0.5 are treated
// as the content class. Refitting replaces the previous model.
func (c *Classifier) Fit(ctx context.Context, x domsift.Matrix, y []float64) error {
	n, d := x.Rows(), x.Cols()
	if n == 0 {
		return domsift.Errorf(domsift.EINVALID, "cannot fit on an empty matrix")
	}
	if n != len(y) {
		return domsift.Errorf(domsift.EINVALID, "matrix has %d rows but %d labels given", n, len(y))
	}

	offset, scale := fitNormalizer(x)

	// Normalize once up front so each epoch runs over plain slices.
	rows := make([][]float64, n)
	for i := range rows {
		src := x.Row(i)
		row := make([]float64, d)
		for j, v := range src {
			row[j] = (v + offset[j]) * scale[j]
		}
		rows[i] = row
	}

	epochs := c.Epochs
	if epochs <= 0 {
		epochs = DefaultEpochs
	}
	lr := c.LearningRate
	if lr <= 0 {
		lr = DefaultLearningRate
	}
	reg := c.C
	if reg <= 0 {
		reg = DefaultC
	}
	lambda := 1 / (reg * float64(n))

	w := make([]float64, d)
	var b float64

	rng := rand.New(rand.NewSource(c.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, i := range order {
			row := rows[i]
			z := b
			for j, v := range row {
				z += w[j] * v
			}
			g := sigmoid(z) - target(y[i])
			for j, v := range row {
				w[j] -= lr * (g*v + lambda*w[j])
			}
			b -= lr * g
		}
	}

	c.Model = &Model{Bias: b, Coefs: w, Offset: offset, Scale: scale}
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

// Proba returns the content-class probability for each row of x.
func (c *Classifier) Proba(x domsift.Matrix) ([]float64, error) {
	if c.Model == nil {
		return nil, domsift.Errorf(domsift.EINVALID, "classifier is not fitted")
	}
	if x.Cols() != len(c.Model.Coefs) {
		return nil, domsift.Errorf(domsift.EINVALID, "matrix has %d columns, model was fitted on %d", x.Cols(), len(c.Model.Coefs))
	}
	out := make([]float64, x.Rows())
	for i := range out {
		out[i] = c.Model.evaluate(x.Row(i))
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

// Factory builds logistic regression classifiers for the registry.
type Factory struct{}

// Name returns the estimator family name.
func (Factory) Name() string { return "logreg" }

// New builds a classifier from hyperparameters. Recognized parameters:
// c, epochs, learning_rate, seed.
func (Factory) New(params domsift.Params) (domsift.Estimator, error) {
	if err := params.Check("c", "epochs", "learning_rate", "seed"); err != nil {
		return nil, err
	}
	c := params.Float("c", DefaultC)
	if c <= 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter c must be positive, got %v", c)
	}
	epochs := params.Int("epochs", DefaultEpochs)
	if epochs < 1 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter epochs must be at least 1, got %d", epochs)
	}
	lr := params.Float("learning_rate", DefaultLearningRate)
	if lr <= 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "parameter learning_rate must be positive, got %v", lr)
	}
	return &Classifier{
		C:            c,
		Epochs:       epochs,
		LearningRate: lr,
		Seed:         int64(params.Int("seed", 0)),
	}, nil
}

// fitNormalizer computes the offset and scale that map each column to
// zero mean and unit variance. Constant columns keep scale 1.
func fitNormalizer(x domsift.Matrix) (offset, scale []float64) {
	n, d := x.Rows(), x.Cols()
	mean := make([]float64, d)
	for i := 0; i < n; i++ {
		for j, v := range x.Row(i) {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	variance := make([]float64, d)
	for i := 0; i < n; i++ {
		for j, v := range x.Row(i) {
			dv := v - mean[j]
			variance[j] += dv * dv
		}
	}

	offset = make([]float64, d)
	scale = make([]float64, d)
	for j := range offset {
		offset[j] = -mean[j]
		std := math.Sqrt(variance[j] / float64(n))
		if std == 0 {
			scale[j] = 1
		} else {
			scale[j] = 1 / std
		}
	}
	return offset, scale
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func target(label float64) float64 {
	if label > 0.5 {
		return 1
	}
	return 0
}
