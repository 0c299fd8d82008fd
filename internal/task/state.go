// Package task provides the durable task queue: the status state machine and
// a SQLite-backed Store.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/clock,
//     internal/ctxutil, std lib
//   - MUST NOT import: internal/ai, internal/daemon, internal/cli
package task

import (
	"fmt"
	"slices"

	"github.com/mrz1836/faster/internal/constants"
	fastererrors "github.com/mrz1836/faster/internal/errors"
)

// ValidTransitions defines every allowed status change.
//
//	Queued → Running, Cancelled
//	Running → Completed, Failed
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusQueued:  {constants.TaskStatusRunning, constants.TaskStatusCancelled},
	constants.TaskStatusRunning: {constants.TaskStatusCompleted, constants.TaskStatusFailed},
}

// terminalStatuses are the states absent from ValidTransitions.
// MAINTENANCE: keep in step with ValidTransitions.
//
//nolint:gochecknoglobals // Read-only lookup table
var terminalStatuses = map[constants.TaskStatus]bool{
	constants.TaskStatusCompleted: true,
	constants.TaskStatusFailed:    true,
	constants.TaskStatusCancelled: true,
}

// clearableStatuses are removed by ClearCompleted. Failed tasks are kept so
// their errors stay visible.
//
//nolint:gochecknoglobals // Read-only lookup table
var clearableStatuses = []constants.TaskStatus{
	constants.TaskStatusCompleted,
	constants.TaskStatusCancelled,
}

// IsValidTransition reports whether from → to is allowed.
// A status never transitions to itself.
func IsValidTransition(from, to constants.TaskStatus) bool {
	if from == to {
		return false
	}
	return slices.Contains(ValidTransitions[from], to)
}

// IsTerminalStatus reports whether no further transitions are possible.
func IsTerminalStatus(status constants.TaskStatus) bool {
	return terminalStatuses[status]
}

// ValidateTransition returns a wrapped ErrInvalidTransition when from → to is
// not allowed.
func ValidateTransition(from, to constants.TaskStatus) error {
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			fastererrors.ErrInvalidTransition, from, to)
	}
	return nil
}

// setsStartedAt reports whether entering status stamps started_at.
func setsStartedAt(status constants.TaskStatus) bool {
	return status == constants.TaskStatusRunning
}

// setsCompletedAt reports whether entering status stamps completed_at.
// Cancelled tasks never ran, so they get no completion time.
func setsCompletedAt(status constants.TaskStatus) bool {
	return status == constants.TaskStatusCompleted || status == constants.TaskStatusFailed
}
