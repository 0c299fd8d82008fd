package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// TaskClearer removes finished tasks. Satisfied by task.Store.
type TaskClearer interface {
	ClearCompleted(ctx context.Context) (int, error)
}

// AddClearCommand adds the clear command to the root command.
func AddClearCommand(root *cobra.Command) {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete completed and cancelled tasks",
		Long: `Delete every completed and cancelled task. Queued, running and failed tasks
are kept. Asks for confirmation unless --force is given; --force is required
when stdin is not a terminal or with --output json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(_ *config.Config, store *task.SQLiteStore) error {
				confirm := func() (bool, error) {
					return tui.Confirm("Clear completed tasks?", "Completed and cancelled tasks are deleted.", false)
				}
				return runClearWithDeps(cmd.Context(), cmd.OutOrStdout(), outputFormat(cmd), store, force, confirm)
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	root.AddCommand(cmd)
}

// runClearWithDeps asks for confirmation unless force is set, then clears.
func runClearWithDeps(
	ctx context.Context,
	w io.Writer,
	format string,
	clearer TaskClearer,
	force bool,
	confirm func() (bool, error),
) error {
	if !force {
		if format == OutputJSON {
			return handleError(format, errors.ErrNonInteractiveMode)
		}
		ok, err := confirm()
		switch {
		case stderrors.Is(err, errors.ErrInteractiveRequired):
			return errors.ErrNonInteractiveMode
		case stderrors.Is(err, errors.ErrOperationCanceled):
			ok = false
		case err != nil:
			return err
		}
		if !ok {
			tui.NewTTYOutput(w).Info("Nothing cleared")
			return nil
		}
	}

	count, err := clearer.ClearCompleted(ctx)
	if err != nil {
		return handleError(format, err)
	}

	logger := GetLogger()

	logger.Info().Int("count", count).Msg("cleared completed tasks")

	if format == OutputJSON {
		return tui.NewJSONOutput(w).JSON(map[string]int{"cleared": count})
	}
	tui.NewTTYOutput(w).Success(fmt.Sprintf("Cleared %d completed task(s)", count))
	return nil
}
