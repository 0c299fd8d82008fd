package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// TaskCanceller cancels queued tasks. Satisfied by task.Store.
type TaskCanceller interface {
	Cancel(ctx context.Context, id string) error
}

// AddCancelCommand adds the cancel command to the root command.
func AddCancelCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a queued task",
		Long: `Cancel a task that has not started yet. A running task cannot be
cancelled; stop the daemon to interrupt it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(_ *config.Config, store *task.SQLiteStore) error {
				return runCancelWithDeps(cmd.Context(), cmd.OutOrStdout(), outputFormat(cmd), store, args[0])
			})
		},
	}
	root.AddCommand(cmd)
}

// runCancelWithDeps cancels id and reports the result.
func runCancelWithDeps(ctx context.Context, w io.Writer, format string, canceller TaskCanceller, id string) error {
	if err := canceller.Cancel(ctx, id); err != nil {
		return handleError(format, err)
	}

	logger := GetLogger()

	logger.Info().Str("task_id", id).Msg("task cancelled")

	if format == OutputJSON {
		return tui.NewJSONOutput(w).JSON(map[string]string{"id": id, "status": "cancelled"})
	}
	tui.NewTTYOutput(w).Success(fmt.Sprintf("Cancelled [%s]", id))
	return nil
}
