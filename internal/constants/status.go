package constants

// TaskStatus represents the state of a queued task.
// Status values are stored verbatim in the tasks table.
type TaskStatus string

// Task status constants define the valid states a task can be in:
//
//	Queued → Running, Cancelled
//	Running → Completed, Failed
//
// Completed, Failed and Cancelled are terminal.
const (
	// TaskStatusQueued indicates the task is waiting for the daemon.
	TaskStatusQueued TaskStatus = "queued"

	// TaskStatusRunning indicates the executor has been launched for the task.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusCompleted indicates the executor exited successfully.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed indicates the executor failed or could not be launched.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusCancelled indicates the user cancelled the task before dispatch.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// AllTaskStatuses returns every task status in lifecycle order.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusQueued,
		TaskStatusRunning,
		TaskStatusCompleted,
		TaskStatusFailed,
		TaskStatusCancelled,
	}
}

// ParseTaskStatus converts a stored string back into a TaskStatus.
// The boolean is false for unknown values.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	for _, status := range AllTaskStatuses() {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}
