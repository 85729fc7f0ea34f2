package mock

import (
	"context"

	"github.com/fwojciec/domsift"
)

var _ domsift.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of domsift.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.FetchFn == nil {
		panic("mock: FetchFn not set")
	}
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		panic("mock: CloseFn not set")
	}
	return f.CloseFn()
}
