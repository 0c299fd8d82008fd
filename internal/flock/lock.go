package flock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// ErrLocked is returned by Acquire when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

// Acquire retries briefly so a concurrent Held check, which takes a shared
// lock for an instant, does not look like a running daemon.
const (
	acquireAttempts = 5
	acquireBackoff  = 20 * time.Millisecond
)

// FileLock is an exclusive lock held on a file for the life of a process.
type FileLock struct {
	path string
	file *os.File
	once sync.Once
}

// Acquire opens (creating if needed) the file at path and takes an exclusive,
// non-blocking lock on it. The holder's pid is written into the file for
// diagnostics. Returns ErrLocked if another holder exists.
func Acquire(path string) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := exclusiveWithRetry(f.Fd()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}

	return &FileLock{path: path, file: f}, nil
}

func exclusiveWithRetry(fd uintptr) error {
	var err error
	for attempt := range acquireAttempts {
		if attempt > 0 {
			time.Sleep(acquireBackoff)
		}
		if err = Exclusive(fd); err == nil {
			return nil
		}
	}
	return err
}

// Held reports whether some process holds the lock at path. It never creates
// the file or changes its contents: a missing file means nobody holds it.
func Held(path string) (bool, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from config
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open lock file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := Shared(f.Fd()); err != nil {
		return true, nil //nolint:nilerr // contention is the answer, not a failure
	}
	_ = Unlock(f.Fd())
	return false, nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Release unlocks and closes the lock file. It is safe to call more than once.
// The file itself is left in place so concurrent Acquire calls always lock the
// same inode.
func (l *FileLock) Release() error {
	var err error
	l.once.Do(func() {
		unlockErr := Unlock(l.file.Fd())
		closeErr := l.file.Close()
		err = errors.Join(unlockErr, closeErr)
	})
	return err
}
