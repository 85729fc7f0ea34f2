package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fwojciec/domsift"
)

// Compile-time interface verification.
var _ domsift.RunService = (*RunService)(nil)

// RunService implements domsift.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a new run with a generated ID and start time.
func (s *RunService) CreateRun(ctx context.Context, run *domsift.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.StartedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, kind, command, status, error, documents, blocks, score, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Kind, run.Command, run.Status, run.Error, run.Documents, run.Blocks, run.Score,
		run.StartedAt.Format(time.RFC3339), formatFinishedAt(run.FinishedAt))

	return err
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*domsift.Run, error) {
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT id, kind, command, status, error, documents, blocks, score, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domsift.Errorf(domsift.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter domsift.RunFilter) ([]*domsift.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, kind, command, status, error, documents, blocks, score, started_at, finished_at FROM runs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Kind != nil {
		query.WriteString(" AND kind = ?")
		args = append(args, *filter.Kind)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, *filter.Status)
	}

	query.WriteString(" ORDER BY started_at DESC, id")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domsift.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// UpdateRun updates an existing run.
func (s *RunService) UpdateRun(ctx context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error) {
	// First check if run exists
	run, err := s.FindRunByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if upd.Status != nil {
		run.Status = *upd.Status
	}
	if upd.Error != nil {
		run.Error = *upd.Error
	}
	if upd.Documents != nil {
		run.Documents = *upd.Documents
	}
	if upd.Blocks != nil {
		run.Blocks = *upd.Blocks
	}
	if upd.Score != nil {
		run.Score = *upd.Score
	}
	if upd.FinishedAt != nil {
		run.FinishedAt = upd.FinishedAt.UTC()
	}

	// Validate before persisting
	if err := run.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.conn.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, error = ?, documents = ?, blocks = ?, score = ?, finished_at = ?
		WHERE id = ?
	`, run.Status, run.Error, run.Documents, run.Blocks, run.Score,
		formatFinishedAt(run.FinishedAt), id)

	if err != nil {
		return nil, err
	}

	return run, nil
}

// DeleteRun permanently removes a run.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.conn.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domsift.Errorf(domsift.ENOTFOUND, "run not found")
	}

	return nil
}

// scanRun reads one runs row through the given scan function.
func scanRun(scan func(dest ...any) error) (*domsift.Run, error) {
	var run domsift.Run
	var startedAt, finishedAt string

	if err := scan(&run.ID, &run.Kind, &run.Command, &run.Status, &run.Error,
		&run.Documents, &run.Blocks, &run.Score, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	var err error
	run.StartedAt, err = parseTime("started_at", startedAt)
	if err != nil {
		return nil, err
	}
	// An empty finished_at means the run is still in progress.
	if finishedAt != "" {
		run.FinishedAt, err = parseTime("finished_at", finishedAt)
		if err != nil {
			return nil, err
		}
	}

	return &run, nil
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// formatFinishedAt renders the zero time as an empty string so
// in-progress runs are distinguishable in the table.
func formatFinishedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
