package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/domain"
	fastererrors "github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/logging"
	"github.com/mrz1836/faster/internal/process"
)

//nolint:gochecknoglobals // Constant-like structure
var claudeCLIInfo = CLIInfo{
	Name:        "claude",
	InstallHint: "install Claude Code and make sure 'claude' is on PATH",
	ErrType:     fastererrors.ErrExecution,
}

// ClaudeCodeRunner runs directives as `claude <directive> [--model m] [extra args...]`.
type ClaudeCodeRunner struct {
	cfg      config.ClaudeConfig
	executor process.Executor
	logger   zerolog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time
}

// ClaudeRunnerOption is a functional option for configuring ClaudeCodeRunner.
type ClaudeRunnerOption func(*ClaudeCodeRunner)

// WithClaudeLogger sets the logger for the ClaudeCodeRunner.
func WithClaudeLogger(logger zerolog.Logger) ClaudeRunnerOption {
	return func(r *ClaudeCodeRunner) {
		r.logger = logger.With().Str("component", "claude_runner").Logger()
	}
}

// WithStdio replaces the streams handed to the agent. By default it inherits
// the daemon's terminal.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) ClaudeRunnerOption {
	return func(r *ClaudeCodeRunner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewClaudeCodeRunner creates a runner. A nil executor runs real processes.
func NewClaudeCodeRunner(cfg config.ClaudeConfig, executor process.Executor, opts ...ClaudeRunnerOption) *ClaudeCodeRunner {
	if executor == nil {
		executor = &process.DefaultExecutor{}
	}
	if cfg.CLIPath == "" {
		cfg.CLIPath = config.DefaultClaudeCLIPath
	}
	r := &ClaudeCodeRunner{
		cfg:      cfg,
		executor: executor,
		logger:   zerolog.Nop(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes req and waits for the agent to exit. Cancelling ctx does not
// stop an agent that has already started.
func (r *ClaudeCodeRunner) Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: directive %w", fastererrors.ErrExecution, fastererrors.ErrEmptyValue)
	}

	cmd := r.buildCommand(ctx, req)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.logger.Info().
		Str("task_id", req.TaskID).
		Str("model", r.model(req)).
		Str("directive", logging.Directive(req.Prompt)).
		Msg("launching claude")

	start := r.now()
	_, stderr, err := r.executor.Execute(ctx, cmd)
	result := &domain.AIResult{
		Success:  err == nil,
		ExitCode: exitCode(err),
		Duration: r.now().Sub(start),
	}

	if err != nil {
		wrapped, message := WrapCLIExecutionError(claudeCLIInfo, err, stderr)
		result.Error = message
		r.logger.Warn().
			Str("task_id", req.TaskID).
			Int("exit_code", result.ExitCode).
			Str("error", message).
			Msg("claude failed")
		return result, wrapped
	}

	r.logger.Info().
		Str("task_id", req.TaskID).
		Dur("duration", result.Duration).
		Msg("claude finished")
	return result, nil
}

// CheckInstalled runs `claude --version` and returns its output.
func (r *ClaudeCodeRunner) CheckInstalled(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, r.cfg.CLIPath, "--version") //nolint:gosec // path comes from config
	stdout, stderr, err := r.executor.Execute(ctx, cmd)
	if err != nil {
		wrapped, _ := WrapCLIExecutionError(claudeCLIInfo, err, stderr)
		return "", wrapped
	}
	return strings.TrimSpace(string(stdout)), nil
}

func (r *ClaudeCodeRunner) model(req *domain.AIRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return r.cfg.Model
}

// buildCommand constructs the claude invocation. The process is detached
// from ctx cancellation so a shutdown request lets the current task finish.
func (r *ClaudeCodeRunner) buildCommand(ctx context.Context, req *domain.AIRequest) *exec.Cmd {
	args := []string{req.Prompt}
	if model := r.model(req); model != "" {
		args = append(args, "--model", model)
	}
	args = append(args, r.cfg.ExtraArgs...)

	cmd := exec.CommandContext(context.WithoutCancel(ctx), r.cfg.CLIPath, args...) //nolint:gosec // path comes from config
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}
	return cmd
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Compile-time check that ClaudeCodeRunner implements Runner.
var _ Runner = (*ClaudeCodeRunner)(nil)
