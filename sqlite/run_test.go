package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/sqlite"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func featuresRun() *domsift.Run {
	return &domsift.Run{
		Kind:    domsift.RunKindFeatures,
		Command: "features --input docs.csv --output shards/",
		Status:  domsift.RunStatusRunning,
	}
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("creates run with generated ID and start time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := featuresRun()
		err := svc.CreateRun(ctx, run)
		require.NoError(t, err)

		assert.NotEmpty(t, run.ID, "ID should be generated")
		assert.False(t, run.StartedAt.IsZero(), "StartedAt should be set")
		assert.True(t, run.FinishedAt.IsZero(), "FinishedAt should stay zero while running")
	})

	t.Run("returns error for invalid run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := &domsift.Run{Kind: "bogus", Status: domsift.RunStatusRunning}

		err := svc.CreateRun(ctx, run)
		require.Error(t, err)
		assert.Equal(t, domsift.EINVALID, domsift.ErrorCode(err))
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	t.Run("returns run when found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := featuresRun()
		require.NoError(t, svc.CreateRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, found.ID)
		assert.Equal(t, run.Kind, found.Kind)
		assert.Equal(t, run.Command, found.Command)
		assert.Equal(t, run.Status, found.Status)
		assert.True(t, found.FinishedAt.IsZero())
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		_, err := svc.FindRunByID(ctx, "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, domsift.ENOTFOUND, domsift.ErrorCode(err))
	})
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns all runs with empty filter", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.CreateRun(ctx, featuresRun()))
		}

		runs, err := svc.FindRuns(ctx, domsift.RunFilter{})
		require.NoError(t, err)
		assert.Len(t, runs, 3)
	})

	t.Run("filters by kind and status", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateRun(ctx, featuresRun()))
		train := &domsift.Run{Kind: domsift.RunKindTrain, Status: domsift.RunStatusRunning}
		require.NoError(t, svc.CreateRun(ctx, train))

		kind := domsift.RunKindTrain
		runs, err := svc.FindRuns(ctx, domsift.RunFilter{Kind: &kind})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, train.ID, runs[0].ID)

		status := domsift.RunStatusCompleted
		runs, err = svc.FindRuns(ctx, domsift.RunFilter{Status: &status})
		require.NoError(t, err)
		assert.Len(t, runs, 0)
	})

	t.Run("respects limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.CreateRun(ctx, featuresRun()))
		}

		runs, err := svc.FindRuns(ctx, domsift.RunFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})
}

func TestRunService_UpdateRun(t *testing.T) {
	t.Parallel()

	t.Run("updates run fields", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := featuresRun()
		require.NoError(t, svc.CreateRun(ctx, run))

		status := domsift.RunStatusCompleted
		documents := 120
		blocks := 8421
		score := 0.93
		finished := time.Now().UTC()
		updated, err := svc.UpdateRun(ctx, run.ID, domsift.RunUpdate{
			Status:     &status,
			Documents:  &documents,
			Blocks:     &blocks,
			Score:      &score,
			FinishedAt: &finished,
		})
		require.NoError(t, err)

		assert.Equal(t, domsift.RunStatusCompleted, updated.Status)
		assert.Equal(t, 120, updated.Documents)
		assert.Equal(t, 8421, updated.Blocks)
		assert.Equal(t, 0.93, updated.Score)
		assert.False(t, updated.FinishedAt.IsZero())

		// The update is visible on a fresh read.
		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domsift.RunStatusCompleted, found.Status)
		assert.False(t, found.FinishedAt.IsZero())
	})

	t.Run("rejects an invalid status", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := featuresRun()
		require.NoError(t, svc.CreateRun(ctx, run))

		status := "bogus"
		_, err := svc.UpdateRun(ctx, run.ID, domsift.RunUpdate{Status: &status})
		require.Error(t, err)
		assert.Equal(t, domsift.EINVALID, domsift.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		status := domsift.RunStatusFailed
		_, err := svc.UpdateRun(ctx, "nonexistent-id", domsift.RunUpdate{Status: &status})
		require.Error(t, err)
		assert.Equal(t, domsift.ENOTFOUND, domsift.ErrorCode(err))
	})
}

func TestRunService_DeleteRun(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := featuresRun()
		require.NoError(t, svc.CreateRun(ctx, run))

		err := svc.DeleteRun(ctx, run.ID)
		require.NoError(t, err)

		_, err = svc.FindRunByID(ctx, run.ID)
		assert.Equal(t, domsift.ENOTFOUND, domsift.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		err := svc.DeleteRun(ctx, "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, domsift.ENOTFOUND, domsift.ErrorCode(err))
	})
}
