package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/domain"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// TaskGetter loads one task. Satisfied by task.Store.
type TaskGetter interface {
	Get(ctx context.Context, id string) (*domain.Task, error)
}

// AddShowCommand adds the show command to the root command.
func AddShowCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(_ *config.Config, store *task.SQLiteStore) error {
				return runShowWithDeps(cmd.Context(), cmd.OutOrStdout(), outputFormat(cmd), store, args[0])
			})
		},
	}
	root.AddCommand(cmd)
}

// runShowWithDeps prints a task as rendered markdown or JSON.
func runShowWithDeps(ctx context.Context, w io.Writer, format string, getter TaskGetter, id string) error {
	t, err := getter.Get(ctx, id)
	if err != nil {
		return handleError(format, err)
	}

	if format == OutputJSON {
		return tui.NewJSONOutput(w).JSON(t)
	}

	_, _ = fmt.Fprint(w, tui.RenderMarkdown(tui.TaskMarkdown(t)))
	return nil
}
