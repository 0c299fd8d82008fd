package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	if err := s.db.PingContext(ctx); err != nil {
//	    return errors.Wrap(err, "failed to reach task database")
//	}
//
// The original error chain is preserved, so errors.Is keeps working:
//
//	if errors.Is(err, errors.ErrStorage) {
//	    // abort the daemon
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message:
//
//	return errors.Wrapf(err, "failed to fail task %s", id)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Storage joins a driver error under ErrStorage so callers can classify it
// without knowing about database/sql. The driver message is kept.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
