package mock

import (
	"context"

	"github.com/fwojciec/domsift"
)

var _ domsift.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of domsift.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.WaitFn == nil {
		panic("mock: WaitFn not set")
	}
	return l.WaitFn(ctx, domain)
}
