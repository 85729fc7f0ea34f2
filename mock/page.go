package mock

import (
	"context"

	"github.com/fwojciec/domsift"
)

var _ domsift.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of domsift.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *domsift.Page) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *domsift.Page) error {
	if s.SaveFn == nil {
		panic("mock: SaveFn not set")
	}
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	if s.CommitFn == nil {
		panic("mock: CommitFn not set")
	}
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	if s.AbortFn == nil {
		panic("mock: AbortFn not set")
	}
	return s.AbortFn()
}
