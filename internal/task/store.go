package task

import (
	"context"

	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/domain"
)

// Store defines the task queue operations. Every method is a single atomic
// transaction; no lock is held between calls.
//
// Driver failures are wrapped with errors.ErrStorage; unknown ids with
// errors.ErrTaskNotFound; illegal status changes with errors.ErrInvalidTransition.
type Store interface {
	// Enqueue creates a queued task and returns its id. model may be empty.
	Enqueue(ctx context.Context, command, model string) (string, error)

	// Dequeue returns the oldest queued task without changing it, or nil
	// when nothing is queued. Repeated calls return the same task.
	Dequeue(ctx context.Context) (*domain.Task, error)

	// Claim atomically marks the oldest queued task running and returns it,
	// or nil when nothing is queued. Two callers never claim the same task.
	Claim(ctx context.Context) (*domain.Task, error)

	// UpdateStatus moves a task to status, stamping started_at on Running and
	// completed_at on Completed or Failed.
	UpdateStatus(ctx context.Context, id string, status constants.TaskStatus) error

	// Fail marks a running task failed with message.
	Fail(ctx context.Context, id, message string) error

	// Cancel cancels a queued task. A running task returns errors.ErrTaskRunning.
	Cancel(ctx context.Context, id string) error

	// Get returns a copy of the task. Unknown ids return errors.ErrTaskNotFound.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// List returns all tasks, newest first.
	List(ctx context.Context) ([]*domain.Task, error)

	// ListByStatus returns tasks in any of statuses, newest first.
	ListByStatus(ctx context.Context, statuses ...constants.TaskStatus) ([]*domain.Task, error)

	// Counts returns the number of tasks per status. Missing statuses are zero.
	Counts(ctx context.Context) (map[constants.TaskStatus]int, error)

	// ClearCompleted deletes completed and cancelled tasks and returns how many.
	ClearCompleted(ctx context.Context) (int, error)

	// Close releases the underlying database.
	Close() error
}
