package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/clock"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/domain"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/intent"
)

func addJSON(t *testing.T, args ...string) addResult {
	t.Helper()

	output, err := execute(t, append([]string{"add", "-o", "json"}, args...)...)
	require.NoError(t, err)

	var got addResult
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	return got
}

func TestAdd(t *testing.T) {
	t.Run("processes the directive", func(t *testing.T) {
		isolate(t)

		got := addJSON(t, "um", "can you", "fix the login bug")
		assert.Equal(t, "fix the login bug", got.Directive)
		assert.Equal(t, intent.Test, got.Intent)
		assert.InDelta(t, 0.85, got.Confidence, 0.001)
		assert.Equal(t, "sonnet", got.Model)
	})

	t.Run("raw keeps text verbatim", func(t *testing.T) {
		isolate(t)

		got := addJSON(t, "--raw", "please run the tests")
		assert.Equal(t, "please run the tests", got.Directive)
		assert.Empty(t, got.Intent)
	})

	t.Run("model flag overrides config", func(t *testing.T) {
		isolate(t)

		got := addJSON(t, "--model", "haiku", "write docs")
		assert.Equal(t, "haiku", got.Model)
	})

	t.Run("text output", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "add", "refactor", "the", "parser")
		require.NoError(t, err)
		assert.Contains(t, output, "✓ Queued [")
		assert.Contains(t, output, "refactor the parser")
		assert.Contains(t, output, "Code · 85% confidence")
		assert.Contains(t, output, "faster daemon")
	})

	t.Run("requires a directive", func(t *testing.T) {
		isolate(t)

		_, err := execute(t, "add")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})
}

func TestRunAddWithDeps_BlankText(t *testing.T) {
	var out strings.Builder
	err := runAddWithDeps(t.Context(), &out, OutputText, false, nil,
		intent.NewProcessor(intent.DefaultProcessorConfig()), "   ", "", false)
	require.ErrorIs(t, err, errors.ErrInvalidArgument)
	require.ErrorIs(t, err, errors.ErrEmptyValue)
}

func TestParse(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "parse", "-o", "json", "run", "the", "whole", "suite", "asap")
		require.NoError(t, err)

		var got intent.ExtractionResult
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		require.NotNil(t, got.Command)
		assert.Equal(t, intent.Orchestrate, got.Command.Intent)
		assert.Equal(t, "run the whole suite asap", got.Transcript)
		assert.Equal(t, intent.UrgencyHigh, got.Command.Context[intent.ContextUrgency])
	})

	t.Run("text shows fields and flags low confidence", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "parse", "hello", "there")
		require.NoError(t, err)
		assert.Contains(t, output, "Intent:")
		assert.Contains(t, output, "CODE")
		assert.Contains(t, output, "60%")
		assert.Contains(t, output, "would ask to confirm")
		assert.Contains(t, output, "Directive:  hello there")
	})

	t.Run("reports processing time in milliseconds", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		processor := intent.NewProcessor(intent.Config{}, intent.WithClock(clock.NewStepClock(start, 7*time.Millisecond)))

		var out strings.Builder
		require.NoError(t, runParseWithDeps(&out, OutputText, processor, "run the tests"))
		assert.Contains(t, out.String(), "Took:       7 ms")
	})

	t.Run("does not queue", func(t *testing.T) {
		home := isolate(t)

		_, err := execute(t, "parse", "run", "tests")
		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(home, constants.DatabaseFileName))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestStatus(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, output, "Task Queue")
		assert.Contains(t, output, "daemon stopped")
		assert.Contains(t, output, "No tasks in queue")
		assert.Contains(t, output, "0 queued · 0 running · 0 completed · 0 failed · 0 cancelled")
	})

	t.Run("hides finished tasks unless all", func(t *testing.T) {
		home := isolate(t)
		finished := addJSON(t, "write docs")
		pending := addJSON(t, "run the tests")

		store := openHomeStore(t, home)
		claimed, err := store.Claim(t.Context())
		require.NoError(t, err)
		require.Equal(t, finished.ID, claimed.ID)
		require.NoError(t, store.UpdateStatus(t.Context(), claimed.ID, constants.TaskStatusCompleted))

		output, err := execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, output, pending.ID)
		assert.NotContains(t, output, finished.ID)
		assert.Contains(t, output, "○ queued")

		output, err = execute(t, "status", "--all")
		require.NoError(t, err)
		assert.Contains(t, output, finished.ID)
		assert.Contains(t, output, "✓ completed")
	})

	t.Run("json report", func(t *testing.T) {
		isolate(t)
		addJSON(t, "write docs")

		output, err := execute(t, "status", "-o", "json")
		require.NoError(t, err)

		var got statusReport
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		assert.False(t, got.DaemonRunning)
		assert.Equal(t, 1, got.Counts[constants.TaskStatusQueued])
		require.Len(t, got.Tasks, 1)
		assert.Equal(t, "write docs", got.Tasks[0].Command)
	})
}

func TestShow(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		isolate(t)
		added := addJSON(t, "write docs")

		output, err := execute(t, "show", "-o", "json", added.ID)
		require.NoError(t, err)

		var got domain.Task
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		assert.Equal(t, added.ID, got.ID)
		assert.Equal(t, constants.TaskStatusQueued, got.Status)
	})

	t.Run("text renders the task", func(t *testing.T) {
		isolate(t)
		added := addJSON(t, "write docs")

		output, err := execute(t, "show", added.ID)
		require.NoError(t, err)
		assert.Contains(t, output, added.ID)
		assert.Contains(t, output, "write docs")
	})

	t.Run("unknown id as json", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "show", "-o", "json", "deadbeef")
		require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
		require.ErrorIs(t, err, errors.ErrTaskNotFound)
		assert.Equal(t, ExitError, ExitCodeForError(err))

		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		assert.Equal(t, "error", got["type"])
		assert.Contains(t, got["details"], "deadbeef")
	})

	t.Run("json error goes to stderr", func(t *testing.T) {
		isolate(t)

		stdout, stderr, err := executeSplit(t, "show", "-o", "json", "deadbeef")
		require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
		assert.Empty(t, stdout)

		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(stderr), &got))
		assert.Equal(t, "error", got["type"])
		assert.NotContains(t, stderr, "Error:")
	})
}

func TestCancel(t *testing.T) {
	t.Run("queued task", func(t *testing.T) {
		home := isolate(t)
		added := addJSON(t, "write docs")

		output, err := execute(t, "cancel", added.ID)
		require.NoError(t, err)
		assert.Contains(t, output, "Cancelled ["+added.ID+"]")

		stored, err := openHomeStore(t, home).Get(t.Context(), added.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusCancelled, stored.Status)
	})

	t.Run("running task is refused", func(t *testing.T) {
		home := isolate(t)
		added := addJSON(t, "write docs")
		_, err := openHomeStore(t, home).Claim(t.Context())
		require.NoError(t, err)

		_, err = execute(t, "cancel", added.ID)
		require.ErrorIs(t, err, errors.ErrTaskRunning)
		assert.Equal(t, ExitError, ExitCodeForError(err))
	})

	t.Run("finished task is refused", func(t *testing.T) {
		isolate(t)
		added := addJSON(t, "write docs")
		_, err := execute(t, "cancel", added.ID)
		require.NoError(t, err)

		output, err := execute(t, "cancel", added.ID)
		require.ErrorIs(t, err, errors.ErrInvalidTransition)
		assert.Contains(t, output, "is already cancelled")
	})

	t.Run("unknown id", func(t *testing.T) {
		isolate(t)

		_, err := execute(t, "cancel", "deadbeef")
		require.ErrorIs(t, err, errors.ErrTaskNotFound)
	})
}

type fakeClearer struct {
	count  int
	called bool
}

func (f *fakeClearer) ClearCompleted(_ context.Context) (int, error) {
	f.called = true
	return f.count, nil
}

func TestClear(t *testing.T) {
	t.Run("force clears finished tasks", func(t *testing.T) {
		home := isolate(t)
		keep := addJSON(t, "write docs")
		drop := addJSON(t, "run the tests")
		_, err := execute(t, "cancel", drop.ID)
		require.NoError(t, err)

		output, err := execute(t, "clear", "--force")
		require.NoError(t, err)
		assert.Contains(t, output, "Cleared 1 completed task(s)")

		store := openHomeStore(t, home)
		_, err = store.Get(t.Context(), drop.ID)
		require.ErrorIs(t, err, errors.ErrTaskNotFound)
		_, err = store.Get(t.Context(), keep.ID)
		require.NoError(t, err)
	})

	t.Run("without a terminal requires force", func(t *testing.T) {
		isolate(t)

		_, err := execute(t, "clear")
		require.ErrorIs(t, err, errors.ErrNonInteractiveMode)
	})

	t.Run("json requires force", func(t *testing.T) {
		var out strings.Builder
		clearer := &fakeClearer{}
		err := runClearWithDeps(t.Context(), &out, OutputJSON, clearer, false, nil)
		require.ErrorIs(t, err, errors.ErrNonInteractiveMode)
		assert.False(t, clearer.called)
	})

	t.Run("declined", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		var out strings.Builder
		clearer := &fakeClearer{count: 3}
		err := runClearWithDeps(t.Context(), &out, OutputText, clearer, false, func() (bool, error) { return false, nil })
		require.NoError(t, err)
		assert.False(t, clearer.called)
		assert.Contains(t, out.String(), "Nothing cleared")
	})

	t.Run("aborted prompt", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		var out strings.Builder
		clearer := &fakeClearer{count: 3}
		err := runClearWithDeps(t.Context(), &out, OutputText, clearer, false, func() (bool, error) {
			return false, errors.ErrOperationCanceled
		})
		require.NoError(t, err)
		assert.False(t, clearer.called)
	})

	t.Run("confirmed json", func(t *testing.T) {
		var out strings.Builder
		clearer := &fakeClearer{count: 2}
		err := runClearWithDeps(t.Context(), &out, OutputJSON, clearer, true, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"cleared": 2}`, out.String())
	})
}
