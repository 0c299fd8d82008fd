package ai

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/mrz1836/faster/internal/testutil"
)

// failingExecutor returns a mock whose every command fails with err.
func failingExecutor(err error) *testutil.MockExecutor {
	m := testutil.NewMockExecutor()
	m.Default = testutil.Result{Err: err}
	return m
}

// exitError produces a real *exec.ExitError with the given status.
func exitError(t *testing.T, code string) error {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	err := exec.CommandContext(context.Background(), "sh", "-c", "exit "+code).Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exit error, got %v", err)
	}
	return err
}

// EnsureNoRealAPIKeys unsets credentials so a test can never reach a real agent.
func EnsureNoRealAPIKeys(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
}
