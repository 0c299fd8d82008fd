package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/daemon"
	"github.com/mrz1836/faster/internal/domain"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/flock"
	"github.com/mrz1836/faster/internal/speech"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/testutil"
)

// promptRunner succeeds unless the prompt has a scripted failure.
type promptRunner struct {
	failures map[string]string
	crash    string
	prompts  []string
}

func (r *promptRunner) Run(_ context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	r.prompts = append(r.prompts, req.Prompt)
	if req.Prompt == r.crash {
		return nil, testutil.ErrMockExecutorCrashed
	}
	if msg, ok := r.failures[req.Prompt]; ok {
		return &domain.AIResult{ExitCode: 1, Error: msg}, errors.ErrExecution
	}
	return &domain.AIResult{Success: true}, nil
}

func newDaemonFixture(t *testing.T, directives ...string) (*task.SQLiteStore, daemon.Config, []string) {
	t.Helper()

	dir := t.TempDir()
	store, err := task.Open(t.Context(), task.Config{Path: filepath.Join(dir, constants.DatabaseFileName)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ids := make([]string, 0, len(directives))
	for _, d := range directives {
		id, err := store.Enqueue(t.Context(), d, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	cfg := daemon.Config{
		PollInterval: constants.DefaultPollInterval,
		LockFile:     filepath.Join(dir, constants.DaemonLockFileName),
		WorkingDir:   dir,
		Once:         true,
	}
	return store, cfg, ids
}

func TestRunDaemonWithDeps(t *testing.T) {
	t.Run("drains the queue in order", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		store, cfg, ids := newDaemonFixture(t, "write docs", "run the tests")
		runner := &promptRunner{failures: map[string]string{"run the tests": "2 tests failed"}}
		speaker := &recordingSpeaker{}

		var out strings.Builder
		require.NoError(t, runDaemonWithDeps(t.Context(), &out, OutputText, store, runner, cfg, speaker))

		assert.Equal(t, []string{"write docs", "run the tests"}, runner.prompts)
		assert.Equal(t, []string{"Task completed", "Task failed"}, speaker.spoken)

		text := out.String()
		assert.Contains(t, text, "["+ids[0]+"] write docs")
		assert.Contains(t, text, "["+ids[0]+"] Completed in")
		assert.Contains(t, text, "["+ids[1]+"] Failed after")
		assert.Contains(t, text, "2 tests failed")
		assert.Contains(t, text, "Processed 2 task(s): 1 completed, 1 failed")

		done, err := store.Get(t.Context(), ids[0])
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusCompleted, done.Status)

		failed, err := store.Get(t.Context(), ids[1])
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusFailed, failed.Status)
		assert.Equal(t, "2 tests failed", failed.Error)
	})

	t.Run("empty queue with once", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		store, cfg, _ := newDaemonFixture(t)

		var out strings.Builder
		require.NoError(t, runDaemonWithDeps(t.Context(), &out, OutputText, store, &promptRunner{}, cfg, nil))
		assert.Contains(t, out.String(), "Processed 0 task(s)")
	})

	t.Run("json prints stats only", func(t *testing.T) {
		store, cfg, _ := newDaemonFixture(t, "write docs", "add a flag", "run the tests")
		runner := &promptRunner{failures: map[string]string{"add a flag": "boom"}}

		var out strings.Builder
		require.NoError(t, runDaemonWithDeps(t.Context(), &out, OutputJSON, store, runner, cfg, nil))

		var stats daemon.Stats
		require.NoError(t, json.Unmarshal([]byte(out.String()), &stats))
		assert.Equal(t, daemon.Stats{Processed: 3, Completed: 2, Failed: 1}, stats)
	})

	t.Run("executor crash is recorded", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		store, cfg, ids := newDaemonFixture(t, "write docs")

		var out strings.Builder
		require.NoError(t, runDaemonWithDeps(t.Context(), &out, OutputText, store, &promptRunner{crash: "write docs"}, cfg, nil))
		assert.Contains(t, out.String(), "executor crashed")

		failed, err := store.Get(t.Context(), ids[0])
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusFailed, failed.Status)
	})

	t.Run("reports interrupted tasks", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		store, cfg, ids := newDaemonFixture(t, "write docs")
		_, err := store.Claim(t.Context())
		require.NoError(t, err)

		var out strings.Builder
		require.NoError(t, runDaemonWithDeps(t.Context(), &out, OutputText, store, &promptRunner{}, cfg, nil))
		assert.Contains(t, out.String(), "Marked 1 interrupted task(s) failed")

		got, err := store.Get(t.Context(), ids[0])
		require.NoError(t, err)
		assert.Equal(t, daemon.InterruptedMessage, got.Error)
	})

	t.Run("second daemon is refused", func(t *testing.T) {
		store, cfg, _ := newDaemonFixture(t, "write docs")
		lock, err := flock.Acquire(cfg.LockFile)
		require.NoError(t, err)
		defer func() { _ = lock.Release() }()

		var out strings.Builder
		err = runDaemonWithDeps(t.Context(), &out, OutputText, store, &promptRunner{}, cfg, nil)
		require.ErrorIs(t, err, errors.ErrDaemonRunning)
	})
}

func TestAnnouncer(t *testing.T) {
	t.Run("disabled tts warns and stays silent", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		mock := testutil.NewMockExecutor()
		var out strings.Builder

		speaker := announcer(&out, OutputText, speech.NewMacOSSpeaker(config.TTSConfig{Enabled: false}, speech.WithExecutor(mock)))
		assert.Nil(t, speaker)
		assert.Contains(t, out.String(), "--speak ignored: tts.enabled is false")
	})

	t.Run("enabled tts announces", func(t *testing.T) {
		mock := testutil.NewMockExecutor()
		var out strings.Builder

		speaker := announcer(&out, OutputText, speech.NewMacOSSpeaker(config.TTSConfig{Enabled: true}, speech.WithExecutor(mock)))
		require.NotNil(t, speaker)
		assert.Empty(t, out.String())

		announce(speaker, daemon.Outcome{Task: &domain.Task{ID: "abc", Command: "write docs", Status: constants.TaskStatusCompleted}})
		require.Len(t, mock.Started(), 1)
		assert.Equal(t, "say", mock.Started()[0].Args[0])
	})

	t.Run("json output prints nothing", func(t *testing.T) {
		var out strings.Builder
		speaker := announcer(&out, OutputJSON, speech.NewMacOSSpeaker(config.TTSConfig{}, speech.WithExecutor(testutil.NewMockExecutor())))
		assert.Nil(t, speaker)
		assert.Empty(t, out.String())
	})
}
