package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/intent"
	"github.com/mrz1836/faster/internal/testutil"
)

// scriptedListener returns one scripted reply per Capture.
type scriptedListener struct {
	replies []captureReply
	calls   int
}

type captureReply struct {
	text string
	err  error
}

func (l *scriptedListener) Capture(_ context.Context) (string, error) {
	if l.calls >= len(l.replies) {
		return "", errors.ErrNoInput
	}
	r := l.replies[l.calls]
	l.calls++
	return r.text, r.err
}

type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) error {
	return s.SpeakAsync(text)
}

func (s *recordingSpeaker) SpeakAsync(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return nil
}

type queuedTask struct {
	directive string
	model     string
}

type memoryQueue struct {
	tasks []queuedTask
	err   error
}

func (q *memoryQueue) Enqueue(_ context.Context, directive, model string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, queuedTask{directive: directive, model: model})
	return fmt.Sprintf("task%04d", len(q.tasks)), nil
}

type voiceHarness struct {
	deps     voiceDeps
	listener *scriptedListener
	speaker  *recordingSpeaker
	queue    *memoryQueue
	asked    []string
}

func newVoiceHarness(t *testing.T, mode config.ConfirmationMode, replies ...captureReply) *voiceHarness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	h := &voiceHarness{
		listener: &scriptedListener{replies: replies},
		speaker:  &recordingSpeaker{},
		queue:    &memoryQueue{},
	}
	h.deps = voiceDeps{
		listener:  h.listener,
		speaker:   h.speaker,
		processor: newProcessor(testConfig(t)),
		queue:     h.queue,
		mode:      mode,
		model:     "sonnet",
		confirm: func(c *intent.Command) (bool, error) {
			h.asked = append(h.asked, c.Directive)
			return true, nil
		},
	}
	return h
}

// presses returns input with one Enter per capture.
func presses(n int) *strings.Reader {
	return strings.NewReader(strings.Repeat("\n", n))
}

func TestRunVoiceLoop(t *testing.T) {
	t.Run("queues and speaks the intent", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationSmart,
			captureReply{text: "um can you fix the login bug"},
		)

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &out, h.deps, false))

		require.Len(t, h.queue.tasks, 1)
		assert.Equal(t, queuedTask{directive: "fix the login bug", model: "sonnet"}, h.queue.tasks[0])
		assert.Empty(t, h.asked)
		assert.Equal(t, []string{"Test"}, h.speaker.spoken)
		assert.Contains(t, out.String(), "You said: um can you fix the login bug")
		assert.Contains(t, out.String(), "Queued [task0001] fix the login bug")
	})

	t.Run("confirms low confidence", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationSmart,
			captureReply{text: "hello there"},
		)

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &out, h.deps, false))

		assert.Equal(t, []string{"hello there"}, h.asked)
		require.Len(t, h.queue.tasks, 1)
	})

	t.Run("declined is skipped", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationAlways,
			captureReply{text: "run the tests"},
		)
		h.deps.confirm = func(*intent.Command) (bool, error) { return false, nil }

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &out, h.deps, false))

		assert.Empty(t, h.queue.tasks)
		assert.Empty(t, h.speaker.spoken)
		assert.Contains(t, out.String(), "Skipped")
	})

	t.Run("aborted prompt is skipped", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationAlways,
			captureReply{text: "run the tests"},
		)
		h.deps.confirm = func(*intent.Command) (bool, error) { return false, errors.ErrOperationCanceled }

		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &strings.Builder{}, h.deps, false))
		assert.Empty(t, h.queue.tasks)
	})

	t.Run("prompt failure stops the loop", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationAlways,
			captureReply{text: "run the tests"},
		)
		h.deps.confirm = func(*intent.Command) (bool, error) { return false, errors.ErrInteractiveRequired }

		err := runVoiceLoop(t.Context(), presses(1), &strings.Builder{}, h.deps, false)
		require.ErrorIs(t, err, errors.ErrInteractiveRequired)
	})

	t.Run("never mode does not ask", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever,
			captureReply{text: "hello there"},
		)

		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &strings.Builder{}, h.deps, false))
		assert.Empty(t, h.asked)
		require.Len(t, h.queue.tasks, 1)
	})

	t.Run("nothing heard continues", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever,
			captureReply{err: errors.ErrNoInput},
			captureReply{err: testutil.ErrMockCaptureFailed},
			captureReply{text: "write docs"},
		)

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(3), &out, h.deps, false))

		assert.Equal(t, 3, h.listener.calls)
		assert.Contains(t, out.String(), "Nothing heard")
		require.Len(t, h.queue.tasks, 1)
		assert.Equal(t, "write docs", h.queue.tasks[0].directive)
	})

	t.Run("speech unavailable stops", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever,
			captureReply{err: errors.ErrSpeechUnavailable},
			captureReply{text: "write docs"},
		)

		err := runVoiceLoop(t.Context(), presses(2), &strings.Builder{}, h.deps, false)
		require.ErrorIs(t, err, errors.ErrSpeechUnavailable)
		assert.Empty(t, h.queue.tasks)
	})

	t.Run("only filler words", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever,
			captureReply{text: "um uh please"},
		)

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &out, h.deps, false))
		assert.Empty(t, h.queue.tasks)
		assert.Contains(t, out.String(), "Nothing to queue")
	})

	t.Run("queue failure continues", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever,
			captureReply{text: "write docs"},
		)
		h.queue.err = testutil.ErrMockTaskStoreUnavailable

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &out, h.deps, false))
		assert.Contains(t, out.String(), "failed to queue")
		assert.Empty(t, h.speaker.spoken)
	})

	t.Run("debug prints the analysis", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever,
			captureReply{text: "please run the tests"},
		)

		var out strings.Builder
		require.NoError(t, runVoiceLoop(t.Context(), presses(1), &out, h.deps, true))
		assert.Contains(t, out.String(), "Intent: ORCHESTRATE")
		assert.Contains(t, out.String(), "Directive: run the tests")
		assert.Contains(t, out.String(), "Confidence: 85%")
	})

	t.Run("canceled context exits cleanly", func(t *testing.T) {
		h := newVoiceHarness(t, config.ConfirmationNever)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		// Nothing is ever written, so only ctx can end the loop.
		reader, writer := io.Pipe()
		defer func() { _ = writer.Close() }()

		require.NoError(t, runVoiceLoop(ctx, reader, &strings.Builder{}, h.deps, false))
		assert.Zero(t, h.listener.calls)
	})
}
