package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/domsift"
)

var _ domsift.RunService = (*LoggingRunService)(nil)

// LoggingRunService records writes to the run history. Reads delegate
// silently.
type LoggingRunService struct {
	next   domsift.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next domsift.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service and logs the created run.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *domsift.Run) error {
	start := time.Now()
	err := s.next.CreateRun(ctx, run)
	s.logger.Info("run created",
		"id", run.ID,
		"kind", run.Kind,
		"duration", time.Since(start),
		"err", err,
	)
	return err
}

// FindRunByID delegates to the wrapped service.
func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (*domsift.Run, error) {
	return s.next.FindRunByID(ctx, id)
}

// FindRuns delegates to the wrapped service.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter domsift.RunFilter) ([]*domsift.Run, error) {
	return s.next.FindRuns(ctx, filter)
}

// UpdateRun delegates to the wrapped service and logs the new status.
func (s *LoggingRunService) UpdateRun(ctx context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error) {
	start := time.Now()
	run, err := s.next.UpdateRun(ctx, id, upd)
	status := ""
	if run != nil {
		status = run.Status
	}
	s.logger.Info("run updated",
		"id", id,
		"status", status,
		"duration", time.Since(start),
		"err", err,
	)
	return run, err
}

// DeleteRun delegates to the wrapped service.
func (s *LoggingRunService) DeleteRun(ctx context.Context, id string) error {
	return s.next.DeleteRun(ctx, id)
}
