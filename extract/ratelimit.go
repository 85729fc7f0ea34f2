package extract

import (
	"context"
	"sync"

	"github.com/fwojciec/domsift"
	"golang.org/x/time/rate"
)

var _ domsift.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces requests per domain with token buckets. Requests
// to different domains proceed freely; requests within one domain wait
// their turn.
type DomainLimiter struct {
	rps     float64
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per
// second to each domain, with no burst headroom.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		rps:     rps,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the domain's bucket has a token, or until ctx is
// done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.bucket(domain).Wait(ctx)
}

func (d *DomainLimiter) bucket(domain string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[domain]
	if !ok {
		b = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.buckets[domain] = b
	}
	return b
}
