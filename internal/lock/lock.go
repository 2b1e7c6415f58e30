// Package lock provides per-domain exclusive locks over shared
// filesystem state.
//
// The available/enabled trees can be touched by a concurrent
// invocation or a manual operator edit, so every mutating operation
// takes a lock file scoped to its domain for its full duration. Lock
// acquisition waits a bounded time and surfaces expiry as a Busy error
// instead of hanging.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/logger"
)

// pollInterval is how often acquisition retries a held lock.
const pollInterval = 50 * time.Millisecond

// Locker creates per-domain lock files under Dir, waiting at most
// Timeout for a held lock to clear.
type Locker struct {
	Dir     string
	Timeout time.Duration
}

// New creates a Locker.
func New(dir string, timeout time.Duration) *Locker {
	return &Locker{Dir: dir, Timeout: timeout}
}

func (l *Locker) lockPath(domain string) string {
	return filepath.Join(l.Dir, domain+".lock")
}

// Acquire takes the exclusive lock for a domain. The returned release
// function must be called on every exit path. Returns ErrBusy when the
// lock cannot be obtained within the timeout.
func (l *Locker) Acquire(domain string) (release func(), err error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := l.lockPath(domain)
	deadline := time.Now().Add(l.Timeout)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					logger.Warn("failed to release lock for %s: %v", domain, err)
				}
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
		if time.Now().After(deadline) {
			logger.Debug("lock for %s still held after %v", domain, l.Timeout)
			return nil, errors.Busy(domain)
		}
		time.Sleep(pollInterval)
	}
}

// Holder returns the pid recorded in a held lock file, for operator
// diagnostics. Returns 0 when the lock is free.
func (l *Locker) Holder(domain string) int {
	data, err := os.ReadFile(l.lockPath(domain))
	if err != nil {
		return 0
	}
	var pid int
	_, _ = fmt.Sscanf(strings.TrimSpace(string(data)), "%d", &pid)
	return pid
}
