package mock

import (
	"context"

	"github.com/fwojciec/domsift"
)

var _ domsift.RunService = (*RunService)(nil)

// RunService is a mock implementation of domsift.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *domsift.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*domsift.Run, error)
	FindRunsFn    func(ctx context.Context, filter domsift.RunFilter) ([]*domsift.Run, error)
	UpdateRunFn   func(ctx context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error)
	DeleteRunFn   func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *domsift.Run) error {
	if s.CreateRunFn == nil {
		panic("mock: CreateRunFn not set")
	}
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*domsift.Run, error) {
	if s.FindRunByIDFn == nil {
		panic("mock: FindRunByIDFn not set")
	}
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter domsift.RunFilter) ([]*domsift.Run, error) {
	if s.FindRunsFn == nil {
		panic("mock: FindRunsFn not set")
	}
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) UpdateRun(ctx context.Context, id string, upd domsift.RunUpdate) (*domsift.Run, error) {
	if s.UpdateRunFn == nil {
		panic("mock: UpdateRunFn not set")
	}
	return s.UpdateRunFn(ctx, id, upd)
}

func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	if s.DeleteRunFn == nil {
		panic("mock: DeleteRunFn not set")
	}
	return s.DeleteRunFn(ctx, id)
}
