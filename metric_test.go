package domsift_test

import (
	"testing"

	"github.com/fwojciec/domsift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestF1(t *testing.T) {
	t.Parallel()

	yTrue := []float64{1, 1, 0, 0, 1}
	yPred := []float64{1, 0, 1, 0, 1}

	// precision 2/3, recall 2/3 -> f1 2/3
	assert.InDelta(t, 2.0/3.0, domsift.F1(yTrue, yPred), 1e-12)
}

func TestF1_NoPositives(t *testing.T) {
	t.Parallel()

	yTrue := []float64{0, 0, 0}
	yPred := []float64{0, 0, 0}

	assert.Zero(t, domsift.F1(yTrue, yPred))
}

func TestPrecisionRecall(t *testing.T) {
	t.Parallel()

	yTrue := []float64{1, 1, 1, 0}
	yPred := []float64{1, 0, 0, 1}

	assert.InDelta(t, 0.5, domsift.Precision(yTrue, yPred), 1e-12)
	assert.InDelta(t, 1.0/3.0, domsift.Recall(yTrue, yPred), 1e-12)
}

func TestAccuracy(t *testing.T) {
	t.Parallel()

	yTrue := []float64{1, 0, 1, 0}
	yPred := []float64{1, 0, 0, 0}

	assert.InDelta(t, 0.75, domsift.Accuracy(yTrue, yPred), 1e-12)
}

func TestAccuracy_Empty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, domsift.Accuracy(nil, nil))
}

func TestMetricByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"f1", "precision", "recall", "accuracy"} {
		m, err := domsift.MetricByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, m, name)
	}

	_, err := domsift.MetricByName("auc")
	require.Error(t, err)
	assert.Equal(t, domsift.EINVALID, domsift.ErrorCode(err))
}

func TestMetric_LengthMismatchPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		domsift.F1([]float64{1}, []float64{1, 0})
	})
}
