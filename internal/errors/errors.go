// Package errors provides centralized error handling for faster.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrStorage indicates that the task database is unreachable, locked past
	// its busy timeout, or corrupt.
	ErrStorage = errors.New("task storage unavailable")

	// ErrTaskNotFound indicates that an operation referenced an unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrExecution indicates that the external executor failed or could not be launched.
	ErrExecution = errors.New("execution failed")

	// ErrNoInput indicates that speech capture produced no text.
	ErrNoInput = errors.New("no speech input captured")

	// ErrInvalidTransition indicates an attempt to make an invalid state transition.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTaskRunning indicates an operation that is refused while a task is running,
	// such as cancellation.
	ErrTaskRunning = errors.New("task is running")

	// ErrDaemonRunning indicates another daemon already holds the queue lock.
	ErrDaemonRunning = errors.New("daemon already running")

	// ErrSpeechUnavailable indicates the speech backend is missing on this machine.
	ErrSpeechUnavailable = errors.New("speech backend unavailable")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidArgument indicates an invalid command-line argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidQueue indicates an invalid queue configuration value.
	ErrConfigInvalidQueue = errors.New("invalid queue configuration")

	// ErrConfigInvalidClaude indicates an invalid claude configuration value.
	ErrConfigInvalidClaude = errors.New("invalid claude configuration")

	// ErrConfigInvalidIntent indicates an invalid intent configuration value.
	ErrConfigInvalidIntent = errors.New("invalid intent configuration")

	// ErrConfigInvalidSpeech indicates an invalid stt/tts configuration value.
	ErrConfigInvalidSpeech = errors.New("invalid speech configuration")

	// ErrConfigInvalidConfirmation indicates an invalid confirmation configuration value.
	ErrConfigInvalidConfirmation = errors.New("invalid confirmation configuration")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigExists indicates that setup would overwrite an existing config file.
	ErrConfigExists = errors.New("config file already exists")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrCommandFailed indicates that a helper command (editor, version check) failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrMissingRequiredTools indicates that required tools are missing.
	ErrMissingRequiredTools = errors.New("required tools are missing")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the force flag.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")

	// ErrInteractiveRequired indicates a command needs a terminal on stdin.
	ErrInteractiveRequired = errors.New("interactive terminal required")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
