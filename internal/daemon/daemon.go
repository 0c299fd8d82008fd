// Package daemon drives queued tasks to a terminal state.
//
// The Dispatcher is a single sequential worker. It claims the oldest queued
// task, hands its directive to an ai.Runner, and records the outcome. When
// the queue is empty it sleeps for the poll interval and tries again.
//
// Executor failures become Failed tasks and the loop keeps going. Storage
// failures stop the loop, because the database is the only record of what
// has run.
//
// IMPORTANT: This package may import internal/task, internal/ai and the
// leaf packages. It MUST NOT import internal/cli.
package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/ai"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/ctxutil"
	"github.com/mrz1836/faster/internal/domain"
	fastererrors "github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/flock"
	"github.com/mrz1836/faster/internal/task"
)

// Config tunes the dispatch loop.
type Config struct {
	// PollInterval is how long to sleep when the queue is empty.
	PollInterval time.Duration

	// LockFile, when set, is held for the life of Run so a second
	// dispatcher on the same queue fails with errors.ErrDaemonRunning.
	LockFile string

	// WorkingDir is where the executor runs. Empty means the current directory.
	WorkingDir string

	// Once makes Run return as soon as the queue is empty.
	Once bool

	// MaxTasks stops Run after this many tasks. Zero means no limit.
	MaxTasks int

	// StopOnStorageError makes storage failures end Run. When false they
	// are logged and retried after PollInterval.
	StopOnStorageError bool
}

// Outcome describes one finished task.
type Outcome struct {
	// Task is the task as stored after its final transition.
	Task *domain.Task

	// Result is what the runner reported. It may be nil when the runner
	// failed before launching.
	Result *domain.AIResult

	// Err is the runner error, nil on success.
	Err error
}

// Succeeded reports whether the task completed.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// InterruptedMessage is recorded on tasks found Running when a dispatcher
// starts, left behind by a dispatcher that exited mid-run.
const InterruptedMessage = "interrupted: daemon exited while the task was running"

// Stats counts what a Run processed.
type Stats struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Recovered int `json:"recovered,omitempty"`
}

// Dispatcher pulls tasks from a Store and runs them one at a time.
type Dispatcher struct {
	store    task.Store
	runner   ai.Runner
	cfg      Config
	logger   zerolog.Logger
	onStart  func(*domain.Task)
	onFinish func(Outcome)

	// unrecorded holds a finished task whose outcome failed to reach the
	// store. Step retries it before claiming anything else, so at most one
	// task is ever Running.
	unrecorded *finished
}

// finished is a run result waiting to be written to the store.
type finished struct {
	task   *domain.Task
	result *domain.AIResult
	runErr error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger.With().Str("component", "daemon").Logger()
	}
}

// WithOnStart registers a callback invoked after a task is claimed and
// before the runner starts.
func WithOnStart(fn func(*domain.Task)) Option {
	return func(d *Dispatcher) {
		d.onStart = fn
	}
}

// WithOnFinish registers a callback invoked after a task's outcome is stored.
func WithOnFinish(fn func(Outcome)) Option {
	return func(d *Dispatcher) {
		d.onFinish = fn
	}
}

// New creates a Dispatcher. A zero PollInterval uses the default.
func New(store task.Store, runner ai.Runner, cfg Config, opts ...Option) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = constants.DefaultPollInterval
	}
	d := &Dispatcher{
		store:    store,
		runner:   runner,
		cfg:      cfg,
		logger:   zerolog.Nop(),
		onStart:  func(*domain.Task) {},
		onFinish: func(Outcome) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes tasks until ctx is canceled, the queue drains in Once mode,
// MaxTasks is reached, or a storage error stops the loop.
//
// Cancellation is a clean stop and returns a nil error. A task whose runner
// has already started is allowed to finish and its outcome is recorded.
func (d *Dispatcher) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if d.cfg.LockFile != "" {
		lock, err := flock.Acquire(d.cfg.LockFile)
		if err != nil {
			if errors.Is(err, flock.ErrLocked) {
				return stats, fastererrors.Wrapf(fastererrors.ErrDaemonRunning, "lock %s", d.cfg.LockFile)
			}
			return stats, fastererrors.Wrap(err, "failed to acquire daemon lock")
		}
		defer func() {
			if err := lock.Release(); err != nil {
				d.logger.Warn().Err(err).Msg("failed to release daemon lock")
			}
		}()

		recovered, err := d.recoverInterrupted(ctx)
		if err != nil {
			return stats, err
		}
		stats.Recovered = recovered
	}

	d.logger.Info().
		Dur("poll_interval", d.cfg.PollInterval).
		Bool("once", d.cfg.Once).
		Int("max_tasks", d.cfg.MaxTasks).
		Msg("dispatch loop started")

	for {
		if ctx.Err() != nil {
			if f := d.unrecorded; f != nil {
				if _, err := d.record(ctx, f); err != nil {
					d.logger.Warn().Err(err).Str("task_id", f.task.ID).Msg("outcome not recorded; next start marks the task interrupted")
				}
			}
			d.logger.Info().Int("processed", stats.Processed).Msg("dispatch loop stopped")
			return stats, nil
		}

		outcome, err := d.Step(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				continue
			}
			if d.cfg.StopOnStorageError || !errors.Is(err, fastererrors.ErrStorage) {
				d.logger.Error().Err(err).Msg("dispatch loop aborted")
				return stats, err
			}
			d.logger.Warn().Err(err).Msg("storage error, retrying")
			_ = ctxutil.Sleep(ctx, d.cfg.PollInterval)
			continue
		}

		if outcome == nil {
			if d.cfg.Once {
				d.logger.Info().Int("processed", stats.Processed).Msg("queue empty, exiting")
				return stats, nil
			}
			_ = ctxutil.Sleep(ctx, d.cfg.PollInterval)
			continue
		}

		stats.Processed++
		if outcome.Succeeded() {
			stats.Completed++
		} else {
			stats.Failed++
		}

		if d.cfg.MaxTasks > 0 && stats.Processed >= d.cfg.MaxTasks {
			d.logger.Info().Int("processed", stats.Processed).Msg("task limit reached")
			return stats, nil
		}
	}
}

// recoverInterrupted fails tasks left Running by an earlier dispatcher. It
// must only run while holding the lock, since then no live dispatcher can
// own them.
func (d *Dispatcher) recoverInterrupted(ctx context.Context) (int, error) {
	running, err := d.store.ListByStatus(ctx, constants.TaskStatusRunning)
	if err != nil {
		return 0, fastererrors.Wrap(err, "failed to list running tasks")
	}
	for _, t := range running {
		if err := d.store.Fail(ctx, t.ID, InterruptedMessage); err != nil {
			return 0, fastererrors.Wrapf(err, "failed to recover task %s", t.ID)
		}
		d.logger.Warn().Str("task_id", t.ID).Msg("recovered interrupted task")
	}
	return len(running), nil
}

// Step claims and runs at most one task. It returns a nil Outcome when the
// queue is empty. Errors are storage or cancellation errors; runner failures
// are reported in the Outcome.
//
// When recording an outcome fails, the next Step retries that write instead
// of claiming a new task.
func (d *Dispatcher) Step(ctx context.Context) (*Outcome, error) {
	if f := d.unrecorded; f != nil {
		d.logger.Info().Str("task_id", f.task.ID).Msg("retrying outcome record")
		return d.record(ctx, f)
	}

	t, err := d.store.Claim(ctx)
	if err != nil {
		return nil, fastererrors.Wrap(err, "failed to claim task")
	}
	if t == nil {
		return nil, nil //nolint:nilnil // empty queue
	}

	d.logger.Info().Str("task_id", t.ID).Str("model", t.Model).Msg("task started")
	d.onStart(t)

	// The task is Running from here on; its outcome is recorded even if ctx
	// is canceled while the executor runs.
	result, runErr := d.runner.Run(context.WithoutCancel(ctx), &domain.AIRequest{
		TaskID:     t.ID,
		Prompt:     t.Command,
		Model:      t.Model,
		WorkingDir: d.cfg.WorkingDir,
	})

	if runErr == nil && result != nil && !result.Success {
		runErr = fastererrors.Wrap(fastererrors.ErrExecution, ai.FailureMessage(result, nil))
	}

	return d.record(ctx, &finished{task: t, result: result, runErr: runErr})
}

// record writes f's final status. On failure f is kept for the next Step.
func (d *Dispatcher) record(ctx context.Context, f *finished) (*Outcome, error) {
	runCtx := context.WithoutCancel(ctx)
	log := d.logger.With().Str("task_id", f.task.ID).Logger()

	var err error
	if f.runErr == nil {
		err = d.store.UpdateStatus(runCtx, f.task.ID, constants.TaskStatusCompleted)
	} else {
		err = d.store.Fail(runCtx, f.task.ID, ai.FailureMessage(f.result, f.runErr))
	}
	if err != nil {
		d.unrecorded = f
		return nil, fastererrors.Wrapf(err, "failed to record outcome of task %s", f.task.ID)
	}
	d.unrecorded = nil

	final, err := d.store.Get(runCtx, f.task.ID)
	if err != nil {
		return nil, fastererrors.Wrapf(err, "failed to reload task %s", f.task.ID)
	}

	if f.runErr != nil {
		log.Warn().Str("error", final.Error).Msg("task failed")
	} else {
		log.Info().Dur("duration", final.Duration()).Msg("task completed")
	}

	outcome := &Outcome{Task: final, Result: f.result, Err: f.runErr}
	d.onFinish(*outcome)
	return outcome, nil
}

// IsRunning reports whether a dispatcher currently holds the lock at path.
// The lock file is only read, so the holder's pid stays intact.
func IsRunning(path string) bool {
	held, err := flock.Held(path)
	return err == nil && held
}
