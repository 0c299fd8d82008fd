package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/intent"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// outputFormat returns the --output value for cmd.
func outputFormat(cmd *cobra.Command) string {
	if f := cmd.Flag("output"); f != nil {
		return f.Value.String()
	}
	return OutputText
}

// isQuiet reports whether --quiet was given.
func isQuiet(cmd *cobra.Command) bool {
	f := cmd.Flag("quiet")
	return f != nil && f.Value.String() == "true"
}

// loadConfig loads configuration, honoring --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := config.LoadOptions{}
	if f := cmd.Flag("config"); f != nil {
		opts.ConfigFile = f.Value.String()
	}
	cfg, err := config.LoadWithOptions(cmd.Context(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the task database named by cfg.
func openStore(ctx context.Context, cfg *config.Config) (*task.SQLiteStore, error) {
	return task.Open(ctx, task.Config{
		Path:        cfg.Queue.Database,
		BusyTimeout: cfg.Queue.BusyTimeout,
	}, task.WithLogger(GetLogger()))
}

// newProcessor builds an intent processor from cfg.
func newProcessor(cfg *config.Config) *intent.Processor {
	return intent.NewProcessor(
		intent.Config{ConfidenceThreshold: cfg.Intent.ConfidenceThreshold},
		intent.WithLogger(GetLogger()),
	)
}

// withStore loads config, opens the store and hands both to fn. JSON errors
// are printed to stderr and cobra's own error printing is silenced.
func withStore(cmd *cobra.Command, fn func(cfg *config.Config, store *task.SQLiteStore) error) error {
	format := outputFormat(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return silenceJSONError(cmd, handleError(format, err))
	}

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return silenceJSONError(cmd, handleError(format, err))
	}
	defer func() { _ = store.Close() }()

	return silenceJSONError(cmd, fn(cfg, store))
}

// jsonError is an error waiting to be printed as a JSON object on stderr.
type jsonError struct {
	err error
}

func (e *jsonError) Error() string { return e.err.Error() }

func (e *jsonError) Unwrap() error { return e.err }

// handleError marks err for JSON output in JSON mode; silenceJSONError prints
// it once the command returns. In text mode err is returned unchanged for
// cobra to print.
func handleError(format string, err error) error {
	if err == nil || format != OutputJSON || stderrors.Is(err, errors.ErrJSONErrorOutput) {
		return err
	}
	var pending *jsonError
	if stderrors.As(err, &pending) {
		return err
	}
	return &jsonError{err: err}
}

// silenceJSONError writes a pending JSON error to the command's stderr and
// returns an error wrapping errors.ErrJSONErrorOutput, so the exit code is kept
// without cobra printing a second message.
func silenceJSONError(cmd *cobra.Command, err error) error {
	var pending *jsonError
	if stderrors.As(err, &pending) {
		tui.NewJSONOutput(cmd.ErrOrStderr()).Error(pending.err)
		err = fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, pending.err)
	}
	if stderrors.Is(err, errors.ErrJSONErrorOutput) {
		cmd.SilenceErrors = true
	}
	return err
}
