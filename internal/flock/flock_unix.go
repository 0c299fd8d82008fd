//go:build unix

package flock

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Exclusive takes an exclusive lock on fd without waiting. It fails with
// unix.EWOULDBLOCK when another descriptor holds the lock.
func Exclusive(fd uintptr) error {
	return flockRetry(fd, unix.LOCK_EX|unix.LOCK_NB)
}

// Shared takes a shared lock on fd without waiting. It fails while any
// descriptor holds an exclusive lock.
func Shared(fd uintptr) error {
	return flockRetry(fd, unix.LOCK_SH|unix.LOCK_NB)
}

// Unlock drops any lock held on fd.
func Unlock(fd uintptr) error {
	return flockRetry(fd, unix.LOCK_UN)
}

// flockRetry repeats flock(2) calls interrupted by a signal, which happens
// when Ctrl+C arrives while the daemon is starting.
func flockRetry(fd uintptr, how int) error {
	for {
		err := unix.Flock(int(fd), how) //nolint:gosec // fd fits in int
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
