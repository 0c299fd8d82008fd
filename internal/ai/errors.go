package ai

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CLIInfo describes an external CLI for error messages.
type CLIInfo struct {
	Name        string // command name shown to the user
	InstallHint string // how to get it
	ErrType     error  // sentinel wrapped into every error
}

// WrapCLIExecutionError turns a process error into a wrapped sentinel with a
// short message. The message (without the sentinel prefix) is returned too so
// it can be stored on the task.
func WrapCLIExecutionError(info CLIInfo, err error, stderr []byte) (wrapped error, message string) {
	stderrStr := strings.TrimSpace(string(stderr))

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found") ||
		strings.Contains(stderrStr, "command not found"):
		message = fmt.Sprintf("%s CLI not found - %s", info.Name, info.InstallHint)
	case errors.As(err, &exitErr):
		message = fmt.Sprintf("%s exited with status %d", info.Name, exitErr.ExitCode())
		if stderrStr != "" {
			message += ": " + lastLine(stderrStr)
		}
	case stderrStr != "":
		message = stderrStr
	default:
		message = err.Error()
	}

	return fmt.Errorf("%w: %s", info.ErrType, message), message
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
