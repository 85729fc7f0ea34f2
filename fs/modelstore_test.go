package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/fs"
	"github.com/fwojciec/domsift/logreg"
)

func trainedModel(t *testing.T) (*domsift.Model, domsift.Matrix) {
	t.Helper()

	x := domsift.NewDense(4, 1, []float64{-2, -1, 1, 2})
	y := []float64{0, 0, 1, 1}
	clf := &logreg.Classifier{Epochs: 200, LearningRate: 0.5, Seed: 1}
	require.NoError(t, clf.Fit(context.Background(), x, y))

	return &domsift.Model{
		Family:    "logreg",
		Columns:   []string{"depth"},
		Params:    domsift.Params{"epochs": 200, "learning_rate": 0.5},
		Estimator: clf,
	}, x
}

func TestSaveModel_LoadModel(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a trained estimator", func(t *testing.T) {
		t.Parallel()

		model, x := trainedModel(t)
		path := filepath.Join(t.TempDir(), "models", "logreg.gob")
		require.NoError(t, fs.SaveModel(path, model))

		loaded, err := fs.LoadModel(path)
		require.NoError(t, err)

		assert.Equal(t, "logreg", loaded.Family)
		assert.Equal(t, []string{"depth"}, loaded.Columns)
		assert.Equal(t, 200, loaded.Params.Int("epochs", 0))
		assert.Equal(t, 0.5, loaded.Params.Float("learning_rate", 0))

		want, err := model.Estimator.Predict(x)
		require.NoError(t, err)
		got, err := loaded.Estimator.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("rejects an incomplete model", func(t *testing.T) {
		t.Parallel()

		err := fs.SaveModel(filepath.Join(t.TempDir(), "m.gob"), &domsift.Model{Family: "logreg"})
		require.Error(t, err)
		assert.Equal(t, domsift.EINVALID, domsift.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fs.LoadModel(filepath.Join(t.TempDir(), "missing.gob"))
		require.Error(t, err)
		assert.Equal(t, domsift.ENOTFOUND, domsift.ErrorCode(err))
	})

	t.Run("returns EPARSE for a corrupt file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "corrupt.gob")
		require.NoError(t, os.WriteFile(path, []byte("not a model"), 0644))

		_, err := fs.LoadModel(path)
		require.Error(t, err)
		assert.Equal(t, domsift.EPARSE, domsift.ErrorCode(err))
	})
}
