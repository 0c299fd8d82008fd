package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/intent"
	"github.com/mrz1836/faster/internal/logging"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// TaskEnqueuer queues directives. Satisfied by task.Store.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, command, model string) (string, error)
}

type addOptions struct {
	model string
	raw   bool
}

// addResult is the JSON shape printed by add.
type addResult struct {
	ID         string        `json:"id"`
	Directive  string        `json:"directive"`
	Model      string        `json:"model,omitempty"`
	Intent     intent.Intent `json:"intent,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
}

// AddAddCommand adds the add command to the root command.
func AddAddCommand(root *cobra.Command) {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "add <directive...>",
		Short: "Queue a directive",
		Long: `Queue a directive for the daemon. The text runs through intent extraction
first, which strips filler such as "please" or "can you" and records the
intent. Use --raw to queue the text exactly as typed.

Running faster with arguments and no subcommand does the same thing.

Examples:
  faster add run the tests
  faster add --model opus "refactor the auth module"
  faster "fix the login bug"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Claude model for this directive (default from config)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "queue the text as-is without intent processing")

	root.AddCommand(cmd)
}

// runAdd wires production dependencies for add.
func runAdd(cmd *cobra.Command, args []string, opts addOptions) error {
	return withStore(cmd, func(cfg *config.Config, store *task.SQLiteStore) error {
		model := opts.model
		if model == "" {
			model = cfg.Claude.Model
		}
		return runAddWithDeps(cmd.Context(), cmd.OutOrStdout(), outputFormat(cmd), isQuiet(cmd),
			store, newProcessor(cfg), strings.Join(args, " "), model, opts.raw)
	})
}

// runAddWithDeps processes text and queues the resulting directive.
func runAddWithDeps(
	ctx context.Context,
	w io.Writer,
	format string,
	quiet bool,
	queue TaskEnqueuer,
	processor *intent.Processor,
	text, model string,
	raw bool,
) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return handleError(format, fmt.Errorf("%w: directive %w", errors.ErrInvalidArgument, errors.ErrEmptyValue))
	}

	result := addResult{Directive: text, Model: model}
	if !raw {
		command := processor.Process(text)
		if command.Directive != "" {
			result.Directive = command.Directive
		}
		result.Intent = command.Intent
		result.Confidence = command.Confidence
	}

	id, err := queue.Enqueue(ctx, result.Directive, model)
	if err != nil {
		return handleError(format, err)
	}
	result.ID = id

	logger := GetLogger()

	logger.Info().
		Str("task_id", id).
		Str("intent", result.Intent.String()).
		Str("directive", logging.Directive(result.Directive)).
		Msg("task queued")

	out := tui.NewOutput(w, format)
	if format == OutputJSON {
		return out.JSON(result)
	}

	out.Success(fmt.Sprintf("Queued [%s] %s", id, result.Directive))
	if quiet {
		return nil
	}
	if result.Intent != "" {
		out.Info(fmt.Sprintf("  %s · %.0f%% confidence", result.Intent.Title(), result.Confidence*100))
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, tui.StyleDim.Render("Run 'faster status' to see the queue, 'faster daemon' to process it."))
	return nil
}
