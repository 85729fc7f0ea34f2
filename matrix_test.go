package domsift_test

import (
	"testing"

	"github.com/fwojciec/domsift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDense(t *testing.T) {
	t.Parallel()

	m := domsift.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Equal(t, 5.0, m.At(1, 1))
	assert.Equal(t, []float64{1, 2, 3}, m.Row(0))
}

func TestDense_AppendRow(t *testing.T) {
	t.Parallel()

	m := domsift.NewDense(0, 2, nil)
	m.AppendRow([]float64{1, 2})
	m.AppendRow([]float64{3, 4})

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, []float64{3, 4}, m.Row(1))
}

func TestDense_DimensionMismatchPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		domsift.NewDense(2, 2, []float64{1, 2, 3})
	})
}

func TestCSR(t *testing.T) {
	t.Parallel()

	m := domsift.NewCSR(4)
	m.AppendRow([]float64{0, 1, 0, 2})
	m.AppendRow([]float64{0, 0, 0, 0})
	m.AppendRow([]float64{3, 0, 0, 0})

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.Equal(t, 3, m.NNZ())

	assert.Equal(t, 1.0, m.At(0, 1))
	assert.Equal(t, 0.0, m.At(0, 2))
	assert.Equal(t, 0.0, m.At(1, 3))
	assert.Equal(t, 3.0, m.At(2, 0))

	assert.Equal(t, []float64{0, 1, 0, 2}, m.Row(0))
	assert.Equal(t, []float64{0, 0, 0, 0}, m.Row(1))
}

func TestSubsetRows(t *testing.T) {
	t.Parallel()

	m := domsift.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})

	s := domsift.SubsetRows(m, []int{2, 0})

	require.Equal(t, 2, s.Rows())
	assert.Equal(t, 2, s.Cols())
	assert.Equal(t, []float64{5, 6}, s.Row(0))
	assert.Equal(t, 2.0, s.At(1, 1))
}

func TestSubsetFloats(t *testing.T) {
	t.Parallel()

	got := domsift.SubsetFloats([]float64{10, 20, 30}, []int{2, 2, 0})

	assert.Equal(t, []float64{30, 30, 10}, got)
}

func TestSubsetStrings(t *testing.T) {
	t.Parallel()

	got := domsift.SubsetStrings([]string{"a", "b", "c"}, []int{1, 0})

	assert.Equal(t, []string{"b", "a"}, got)
}
