package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/task"
)

// isolate points FASTER_HOME and the working directory at temp dirs and
// clears variables that would leak host configuration into a test.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv(constants.HomeEnvVar, home)
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"FASTER_CLAUDE_MODEL", "FASTER_QUEUE_DATABASE", "FASTER_OUTPUT", "FASTER_TTS_ENABLED"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
	t.Cleanup(CloseLogFile)
	return home
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// executeSplit runs the root command with args and returns stdout and stderr
// separately.
func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// openHomeStore opens the database the CLI uses under home.
func openHomeStore(t *testing.T, home string) *task.SQLiteStore {
	t.Helper()

	store, err := task.Open(context.Background(), task.Config{
		Path: filepath.Join(home, constants.DatabaseFileName),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// testConfig returns defaults rooted at a temp home.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.DefaultConfigForHome(t.TempDir())
}
