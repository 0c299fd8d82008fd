// Package domain provides the shared record types that cross package
// boundaries in faster: the queued Task and the executor request/result.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"time"

	"github.com/mrz1836/faster/internal/constants"
)

// Task is one unit of queued work. The task store owns the record; callers
// only ever hold copies.
//
// Example JSON representation:
//
//	{
//	    "id": "3f2a9c1b",
//	    "command": "run the tests",
//	    "status": "completed",
//	    "model": "opus",
//	    "created_at": "2025-12-27T10:00:00Z",
//	    "started_at": "2025-12-27T10:00:01Z",
//	    "completed_at": "2025-12-27T10:04:12Z"
//	}
type Task struct {
	// ID is the short unique identifier, stable for the task's lifetime.
	ID string `json:"id"`

	// Command is the directive text handed to the executor.
	Command string `json:"command"`

	// Status is the current lifecycle state.
	Status constants.TaskStatus `json:"status"`

	// Model optionally overrides the executor's default model.
	Model string `json:"model,omitempty"`

	// CreatedAt is when the task was enqueued.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is set once, when the task first becomes running.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is set once, when the task completes or fails.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the failure message. Only set when Status is failed.
	Error string `json:"error,omitempty"`
}

// Duration returns how long the task ran, or zero if it never started or has
// not finished.
func (t Task) Duration() time.Duration {
	if t.StartedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(*t.StartedAt)
}

// HasModel reports whether the task overrides the executor model.
func (t Task) HasModel() bool {
	return t.Model != ""
}
