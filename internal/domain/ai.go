package domain

import "time"

// AIRequest is what the dispatch loop hands to an executor for one task.
//
// Example JSON representation:
//
//	{
//	    "task_id": "3f2a9c1b",
//	    "prompt": "run the tests",
//	    "model": "sonnet",
//	    "working_dir": "/path/to/repo"
//	}
type AIRequest struct {
	// TaskID identifies the queued task being executed. Used for logging only.
	TaskID string `json:"task_id,omitempty"`

	// Prompt is the directive passed to the executor as its first argument.
	Prompt string `json:"prompt"`

	// Model overrides the executor's default model when non-empty.
	Model string `json:"model,omitempty"`

	// WorkingDir is where the executor runs. Empty inherits the daemon's directory.
	WorkingDir string `json:"working_dir,omitempty"`
}

// AIResult is the outcome of one executor invocation. The dispatch loop only
// inspects Success; the rest is for logs and status output.
type AIResult struct {
	// Success is true when the executor exited zero.
	Success bool `json:"success"`

	// ExitCode is the executor's exit status, -1 if it never started.
	ExitCode int `json:"exit_code"`

	// Duration is the wall-clock time of the invocation.
	Duration time.Duration `json:"duration_ns"`

	// Error is the failure message when Success is false.
	Error string `json:"error,omitempty"`
}
