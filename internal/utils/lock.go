package utils

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another sweep holds the run lock
var ErrLocked = errors.New("another sweep is already running")

// RunLock prevents overlapping sweeps between the CLI and the daemon, and
// between goroutines sharing one RunLock
type RunLock struct {
	held sync.Mutex
	lock *flock.Flock
}

// NewRunLock creates a run lock backed by the given file
func NewRunLock(path string) *RunLock {
	return &RunLock{lock: flock.New(path)}
}

// TryLock acquires the lock without waiting. Returns ErrLocked if it is held.
func (l *RunLock) TryLock() error {
	// flock succeeds again on a descriptor this process already holds
	if !l.held.TryLock() {
		return ErrLocked
	}

	ok, err := l.lock.TryLock()
	if err != nil {
		l.held.Unlock()
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		l.held.Unlock()
		return ErrLocked
	}
	return nil
}

// Unlock releases the lock
func (l *RunLock) Unlock() error {
	defer l.held.Unlock()
	return l.lock.Unlock()
}
