// Package speech captures spoken directives and reads results back aloud
// using the macOS command-line tools: osascript for input and say for output.
//
// Neither side retries. Capture returns errors.ErrNoInput when nothing was
// heard or the dialog was dismissed, and errors.ErrSpeechUnavailable when the
// backend is not installed.
package speech

import (
	"context"
	"errors"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/process"
)

// Backend executables.
const (
	osascriptCmd = "osascript"
	sayCmd       = "say"
)

// Listener captures one utterance as text.
type Listener interface {
	Capture(ctx context.Context) (string, error)
}

// Speaker reads text aloud.
type Speaker interface {
	// Speak blocks until the text has been spoken.
	Speak(ctx context.Context, text string) error

	// SpeakAsync starts speaking and returns immediately.
	SpeakAsync(text string) error
}

type options struct {
	executor process.Executor
	logger   zerolog.Logger
}

// Option configures a Listener or Speaker.
type Option func(*options)

// WithExecutor replaces the process runner. Tests use it so no dialog or
// audio is produced.
func WithExecutor(e process.Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger.With().Str("component", "speech").Logger()
	}
}

func applyOptions(opts []Option) options {
	o := options{executor: &process.DefaultExecutor{}, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Availability reports which backends respond on this machine.
type Availability struct {
	Input  bool `json:"input"`
	Output bool `json:"output"`
}

// Available reports whether both backends are on PATH.
func Available(ctx context.Context, opts ...Option) Availability {
	o := applyOptions(opts)
	return Availability{
		Input:  run(ctx, o.executor, osascriptCmd, "-e", "return 1") == nil,
		Output: run(ctx, o.executor, sayCmd, "-v", "?") == nil,
	}
}

// run executes a backend command and discards its output.
func run(ctx context.Context, e process.Executor, name string, args ...string) error {
	_, _, err := e.Execute(ctx, exec.CommandContext(ctx, name, args...))
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
