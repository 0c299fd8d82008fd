// Package process runs external commands for the agent runner, the tool
// detector and the speech backends. Everything goes through Executor so
// tests can swap in a fake and never launch a real binary.
package process

import (
	"bytes"
	"context"
	"os/exec"
)

// Executor runs external commands.
type Executor interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)

	// Execute runs cmd to completion. Streams already attached to cmd are
	// left alone; unset ones are captured and returned.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)

	// Start launches cmd without waiting for it. The process is reaped in
	// the background.
	Start(cmd *exec.Cmd) error
}

// DefaultExecutor runs commands as real subprocesses.
type DefaultExecutor struct{}

// LookPath wraps exec.LookPath.
func (e *DefaultExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Execute runs cmd and returns whatever output it captured.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	if cmd.Stdout == nil {
		cmd.Stdout = &stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = &stderr
	}
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Start launches cmd and waits for it on a goroutine.
func (e *DefaultExecutor) Start(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Combined joins stdout and stderr the way exec.Cmd.CombinedOutput would for
// tools that print their version on either stream.
func Combined(stdout, stderr []byte) string {
	if len(stderr) == 0 {
		return string(stdout)
	}
	return string(stdout) + string(stderr)
}

var _ Executor = (*DefaultExecutor)(nil)
