package domain

import "github.com/mrz1836/faster/internal/constants"

// TaskStatus is re-exported so callers can import domain types and their
// statuses together.
type TaskStatus = constants.TaskStatus

// Re-exported task statuses. These mirror internal/constants/status.go.
const (
	TaskStatusQueued    = constants.TaskStatusQueued
	TaskStatusRunning   = constants.TaskStatusRunning
	TaskStatusCompleted = constants.TaskStatusCompleted
	TaskStatusFailed    = constants.TaskStatusFailed
	TaskStatusCancelled = constants.TaskStatusCancelled
)
