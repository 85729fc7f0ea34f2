package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/domsift"
	main "github.com/fwojciec/domsift/cmd/domsift"
	"github.com/fwojciec/domsift/dataset"
	"github.com/fwojciec/domsift/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCountFeaturizer emits one block per document with a single
// word_count feature, so shard contents are easy to predict.
func wordCountFeaturizer() *mock.Featurizer {
	return &mock.Featurizer{
		FeaturizeFn: func(doc *domsift.Document) (*domsift.FeatureTable, error) {
			return &domsift.FeatureTable{
				Columns: []string{"word_count"},
				Blocks: []*domsift.Block{
					{URL: doc.URL, Path: "/html[1]/body[1]/p[1]", Label: 1, Features: []float64{5}},
				},
			}, nil
		},
		ColumnsFn: func() []string { return []string{"word_count"} },
	}
}

func writeDocumentsCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.csv")
	require.NoError(t, os.WriteFile(path, []byte("url,html,content\n"+rows), 0644))
	return path
}

func TestFeaturesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("featurizes a document table and writes the shard", func(t *testing.T) {
		t.Parallel()

		input := writeDocumentsCSV(t,
			"https://example.com/a,<html><body><p>alpha beta</p></body></html>,alpha beta\n"+
				"https://example.com/b,<html><body><p>gamma</p></body></html>,gamma\n")
		output := filepath.Join(t.TempDir(), "features.csv")

		var updatedID string
		var update domsift.RunUpdate
		runs := &mock.RunService{
			CreateRunFn: func(_ context.Context, run *domsift.Run) error {
				run.ID = "run-1"
				return nil
			},
			UpdateRunFn: func(_ context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error) {
				updatedID = id
				update = upd
				return &domsift.Run{ID: id}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     stderr,
			Runs:       runs,
			Featurizer: wordCountFeaturizer(),
		}

		cmd := &main.FeaturesCmd{Input: input, Output: output, Workers: 2, Dedup: true}
		require.NoError(t, cmd.Run(deps))

		ds, err := dataset.Assemble([]string{output}, dataset.AssembleOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"word_count"}, ds.Columns)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, ds.Groups)

		assert.Contains(t, stdout.String(), "Wrote 2 blocks from 2 documents")

		assert.Equal(t, "run-1", updatedID)
		require.NotNil(t, update.Status)
		assert.Equal(t, domsift.RunStatusCompleted, *update.Status)
		require.NotNil(t, update.Documents)
		assert.Equal(t, 2, *update.Documents)
		require.NotNil(t, update.Blocks)
		assert.Equal(t, 2, *update.Blocks)
		require.NotNil(t, update.FinishedAt)
	})

	t.Run("glob input loads standalone pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("<p>alpha</p>"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("<p>beta</p>"), 0644))
		output := filepath.Join(t.TempDir(), "features.csv")

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			Featurizer: wordCountFeaturizer(),
		}

		cmd := &main.FeaturesCmd{Input: filepath.Join(dir, "*.html"), Output: output, Workers: 2}
		require.NoError(t, cmd.Run(deps))

		ds, err := dataset.Assemble([]string{output}, dataset.AssembleOptions{})
		require.NoError(t, err)
		require.Len(t, ds.Groups, 2)
		assert.Contains(t, ds.Groups[0], "file://")
	})

	t.Run("missing input records a failed run", func(t *testing.T) {
		t.Parallel()

		var update domsift.RunUpdate
		runs := &mock.RunService{
			CreateRunFn: func(_ context.Context, run *domsift.Run) error {
				run.ID = "run-1"
				return nil
			},
			UpdateRunFn: func(_ context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error) {
				update = upd
				return &domsift.Run{ID: id}, nil
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     stderr,
			Runs:       runs,
			Featurizer: wordCountFeaturizer(),
		}

		cmd := &main.FeaturesCmd{Input: filepath.Join(t.TempDir(), "absent.csv"), Output: "out.csv"}
		err := cmd.Run(deps)
		require.Error(t, err)

		assert.Contains(t, stderr.String(), "error:")
		require.NotNil(t, update.Status)
		assert.Equal(t, domsift.RunStatusFailed, *update.Status)
		require.NotNil(t, update.Error)
	})

	t.Run("failed document is reported without aborting", func(t *testing.T) {
		t.Parallel()

		input := writeDocumentsCSV(t,
			"https://example.com/good,<html><body><p>fine</p></body></html>,fine\n"+
				"https://example.com/bad,<html>broken,\n")

		featurizer := &mock.Featurizer{
			FeaturizeFn: func(doc *domsift.Document) (*domsift.FeatureTable, error) {
				if doc.URL == "https://example.com/bad" {
					return nil, domsift.Errorf(domsift.EPARSE, "no usable tree")
				}
				return &domsift.FeatureTable{
					Columns: []string{"word_count"},
					Blocks: []*domsift.Block{
						{URL: doc.URL, Path: "/html[1]/body[1]/p[1]", Label: 1, Features: []float64{1}},
					},
				}, nil
			},
			ColumnsFn: func() []string { return []string{"word_count"} },
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     stderr,
			Featurizer: featurizer,
		}

		output := filepath.Join(t.TempDir(), "features.csv")
		cmd := &main.FeaturesCmd{Input: input, Output: output, Workers: 1}
		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "Wrote 1 blocks from 1 documents")
		assert.Contains(t, stdout.String(), "1 documents failed")
		assert.Contains(t, stderr.String(), "skip https://example.com/bad")
	})

	t.Run("duplicate URLs are skipped", func(t *testing.T) {
		t.Parallel()

		input := writeDocumentsCSV(t,
			"https://example.com/a,<html><body><p>one</p></body></html>,one\n"+
				"https://example.com/a,<html><body><p>two</p></body></html>,two\n")

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			Featurizer: wordCountFeaturizer(),
		}

		output := filepath.Join(t.TempDir(), "features.csv")
		cmd := &main.FeaturesCmd{Input: input, Output: output, Workers: 1, Dedup: true}
		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "Wrote 1 blocks from 1 documents")
		assert.Contains(t, stdout.String(), "1 duplicate URLs skipped")
	})
}
