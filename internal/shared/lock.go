package shared

import (
	"fmt"

	"github.com/gofrs/flock"
)

// SessionLock is an exclusive advisory lock on the database, held by tui, serve and
// any command that changes state.
//
// Sessions load state once and write it back whole, so two writers on the same database would overwrite each other.
type SessionLock struct {
	fl *flock.Flock
}

// AcquireSessionLock takes the lock file next to the database at dbPath without blocking.
//
// Returns [ErrSessionLocked] when another process holds it. In-memory databases need no lock.
func AcquireSessionLock(dbPath string) (*SessionLock, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return &SessionLock{}, nil
	}

	fl := flock.New(dbPath + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrSessionLocked, fl.Path())
	}

	return &SessionLock{fl: fl}, nil
}

// Release unlocks the session lock. Safe to call more than once.
func (l *SessionLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
