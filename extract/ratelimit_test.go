package extract_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/domsift/extract"
)

func timed(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("first call proceeds at once", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(10)

		var err error
		elapsed := timed(func() {
			err = limiter.Wait(context.Background(), "docs.example.com")
		})

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond)
	})

	t.Run("second call to the same host is paced", func(t *testing.T) {
		t.Parallel()

		// 10 rps leaves 100ms between tokens.
		limiter := extract.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "docs.example.com"))

		var err error
		elapsed := timed(func() {
			err = limiter.Wait(context.Background(), "docs.example.com")
		})

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	})

	t.Run("hosts are paced independently", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "docs.example.com"))

		var err error
		elapsed := timed(func() {
			err = limiter.Wait(context.Background(), "blog.example.com")
		})

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond)
	})

	t.Run("context expiry interrupts the wait", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "docs.example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "docs.example.com")
		assert.Error(t, err)
	})

	t.Run("concurrent waits all drain", func(t *testing.T) {
		t.Parallel()

		limiter := extract.NewDomainLimiter(200)

		var g errgroup.Group
		for range 6 {
			g.Go(func() error {
				return limiter.Wait(context.Background(), "docs.example.com")
			})
		}

		require.NoError(t, g.Wait())
	})
}
