// Package flock provides cross-platform advisory file locks.
//
// The daemon takes an exclusive lock on ~/.faster/daemon.lock so that only one
// dispatch loop drains a queue at a time:
//
//	lock, err := flock.Acquire(path)
//	if errors.Is(err, flock.ErrLocked) {
//	    // another daemon is running
//	}
//	defer lock.Release()
package flock
