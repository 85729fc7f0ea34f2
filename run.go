package domsift

import (
	"context"
	"time"
)

// Run kinds.
const (
	RunKindFeatures = "features"
	RunKindTrain    = "train"
	RunKindExtract  = "extract"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run records one invocation of a pipeline command, so past feature
// extractions and training runs can be listed and compared.
type Run struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Command   string  `json:"command"`
	Status    string  `json:"status"`
	Error     string  `json:"error"`
	Documents int     `json:"documents"`
	Blocks    int     `json:"blocks"`
	Score     float64 `json:"score"`

	StartedAt time.Time `json:"startedAt"`
	// FinishedAt is the zero time while the run is in progress.
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	switch r.Kind {
	case RunKindFeatures, RunKindTrain, RunKindExtract:
	default:
		return Errorf(EINVALID, "invalid run kind %q", r.Kind)
	}
	switch r.Status {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		return Errorf(EINVALID, "invalid run status %q", r.Status)
	}
	return nil
}

// RunService represents a service for tracking pipeline runs.
type RunService interface {
	// CreateRun records a new run.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// UpdateRun updates an existing run.
	// Returns ENOTFOUND if run does not exist.
	UpdateRun(ctx context.Context, id string, upd RunUpdate) (*Run, error)

	// DeleteRun permanently removes a run.
	// Returns ENOTFOUND if run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	ID     *string `json:"id"`
	Kind   *string `json:"kind"`
	Status *string `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunUpdate represents fields that can be updated on a run.
type RunUpdate struct {
	Status     *string    `json:"status"`
	Error      *string    `json:"error"`
	Documents  *int       `json:"documents"`
	Blocks     *int       `json:"blocks"`
	Score      *float64   `json:"score"`
	FinishedAt *time.Time `json:"finishedAt"`
}
