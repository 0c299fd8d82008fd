package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice rather than a map because lookups go through errors.Is.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Queue
	// ===================
	{
		err: ErrStorage,
		info: ErrorInfo{
			Message: "The task database could not be read or written.",
			Action:  "Check the queue.database path and that no other process holds a write lock.",
		},
	},
	{
		err: ErrTaskNotFound,
		info: ErrorInfo{
			Message: "No task exists with that id.",
			Action:  "Run 'faster status --all' to list task ids.",
		},
	},
	{
		err: ErrInvalidTransition,
		info: ErrorInfo{
			Message: "The task is not in a state that allows this change.",
			Action:  "Run 'faster show <id>' to see the current status.",
		},
	},
	{
		err: ErrTaskRunning,
		info: ErrorInfo{
			Message: "Cannot cancel a running task.",
			Action:  "Stop the daemon to interrupt it.",
		},
	},
	{
		err: ErrDaemonRunning,
		info: ErrorInfo{
			Message: "Another daemon is already processing this queue.",
			Action:  "Stop the other 'faster daemon' process or point queue.database at a different file.",
		},
	},

	// ===================
	// Execution
	// ===================
	{
		err: ErrExecution,
		info: ErrorInfo{
			Message: "The executor failed to run the directive.",
			Action:  "Run 'faster doctor' to confirm the claude CLI is installed.",
		},
	},

	// ===================
	// Speech
	// ===================
	{
		err: ErrNoInput,
		info: ErrorInfo{
			Message: "Nothing was heard.",
			Action:  "Speak after the prompt appears, or use 'faster add' to type the command.",
		},
	},
	{
		err: ErrSpeechUnavailable,
		info: ErrorInfo{
			Message: "Speech input or output is not available on this machine.",
			Action:  "Voice mode needs macOS 'osascript' and 'say'. Use 'faster add' instead.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "No configuration was loaded.",
		},
	},
	{
		err: ErrConfigInvalidQueue,
		info: ErrorInfo{
			Message: "The queue configuration is invalid.",
			Action:  "Check the queue section with 'faster config show'.",
		},
	},
	{
		err: ErrConfigInvalidClaude,
		info: ErrorInfo{
			Message: "The claude configuration is invalid.",
			Action:  "Check the claude section with 'faster config show'.",
		},
	},
	{
		err: ErrConfigInvalidIntent,
		info: ErrorInfo{
			Message: "The intent configuration is invalid.",
			Action:  "intent.confidence_threshold must be between 0 and 1.",
		},
	},
	{
		err: ErrConfigInvalidSpeech,
		info: ErrorInfo{
			Message: "The speech configuration is invalid.",
			Action:  "Check the stt and tts sections with 'faster config show'.",
		},
	},
	{
		err: ErrConfigInvalidConfirmation,
		info: ErrorInfo{
			Message: "The confirmation configuration is invalid.",
			Action:  "confirmation.mode must be one of smart, always or never.",
		},
	},
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "Configuration file not found.",
			Action:  "Run 'faster setup' to create one.",
		},
	},
	{
		err: ErrConfigExists,
		info: ErrorInfo{
			Message: "A configuration file already exists.",
			Action:  "Use 'faster setup --force' to overwrite it.",
		},
	},

	// ===================
	// CLI
	// ===================
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was empty.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "This operation needs confirmation.",
			Action:  "Re-run with --force when not attached to a terminal.",
		},
	},
	{
		err: ErrInteractiveRequired,
		info: ErrorInfo{
			Message: "This command must be run from an interactive terminal.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
	{
		err: ErrMissingRequiredTools,
		info: ErrorInfo{
			Message: "Required tools are missing.",
			Action:  "Run 'faster doctor' to see what to install.",
		},
	},
	{
		err: ErrCommandFailed,
		info: ErrorInfo{
			Message: "A helper command failed.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Direct sentinels hit the map; wrapped errors fall back to errors.Is.
// Unknown errors keep their original message.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
