//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/domsift/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Close_KillsChromeProcess(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	pid := fetcher.PID()
	require.NotZero(t, pid)

	// Signal 0 probes for process existence without delivering anything.
	// FindProcess always succeeds on Unix, so it cannot be used here.
	require.NoError(t, syscall.Kill(pid, syscall.Signal(0)), "chrome should be running before Close")

	require.NoError(t, fetcher.Close())

	// The OS needs a moment to reap the process.
	time.Sleep(100 * time.Millisecond)

	err = syscall.Kill(pid, syscall.Signal(0))
	assert.Error(t, err, "chrome should be gone after Close")
}
