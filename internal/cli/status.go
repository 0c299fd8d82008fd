package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/daemon"
	"github.com/mrz1836/faster/internal/domain"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// TaskLister reads the queue. Satisfied by task.Store.
type TaskLister interface {
	List(ctx context.Context) ([]*domain.Task, error)
	ListByStatus(ctx context.Context, statuses ...constants.TaskStatus) ([]*domain.Task, error)
	Counts(ctx context.Context) (map[constants.TaskStatus]int, error)
}

// statusReport is the JSON shape printed by status.
type statusReport struct {
	DaemonRunning bool                         `json:"daemon_running"`
	Counts        map[constants.TaskStatus]int `json:"counts"`
	Tasks         []*domain.Task               `json:"tasks"`
}

// activeStatuses are shown by status without --all.
//
//nolint:gochecknoglobals // fixed filter
var activeStatuses = []constants.TaskStatus{
	constants.TaskStatusQueued,
	constants.TaskStatusRunning,
	constants.TaskStatusFailed,
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(root *cobra.Command) {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the task queue",
		Long: `Show queued, running and failed tasks with their age and directive.
Completed and cancelled tasks are hidden unless --all is given.

Examples:
  faster status              # Active tasks
  faster status --all        # Every task
  faster status -o json      # Machine-readable report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(cfg *config.Config, store *task.SQLiteStore) error {
				return runStatusWithDeps(cmd.Context(), cmd.OutOrStdout(), outputFormat(cmd), isQuiet(cmd),
					store, all, daemon.IsRunning(cfg.Daemon.LockFile), tui.TerminalWidth())
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed and cancelled tasks")
	root.AddCommand(cmd)
}

// runStatusWithDeps prints the queue table or JSON report.
func runStatusWithDeps(
	ctx context.Context,
	w io.Writer,
	format string,
	quiet bool,
	lister TaskLister,
	all, daemonRunning bool,
	width int,
) error {
	var (
		tasks []*domain.Task
		err   error
	)
	if all {
		tasks, err = lister.List(ctx)
	} else {
		tasks, err = lister.ListByStatus(ctx, activeStatuses...)
	}
	if err != nil {
		return handleError(format, err)
	}

	counts, err := lister.Counts(ctx)
	if err != nil {
		return handleError(format, err)
	}

	if format == OutputJSON {
		if tasks == nil {
			tasks = []*domain.Task{}
		}
		return tui.NewJSONOutput(w).JSON(statusReport{
			DaemonRunning: daemonRunning,
			Counts:        counts,
			Tasks:         tasks,
		})
	}

	if !quiet {
		daemonState := tui.StyleDim.Render("daemon stopped")
		if daemonRunning {
			daemonState = tui.RenderStatus(constants.TaskStatusRunning) + tui.StyleDim.Render(" daemon")
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n\n", tui.StyleBold.Render("Task Queue"), daemonState)
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, tui.StyleDim.Render("No tasks in queue"))
	} else {
		tui.QueueTable(w, tasks, width)
	}

	if !quiet {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, tui.StyleDim.Render(formatCounts(counts)))
	}
	return nil
}

// formatCounts renders "2 queued · 1 running · ..." in lifecycle order.
func formatCounts(counts map[constants.TaskStatus]int) string {
	parts := make([]string, 0, len(constants.AllTaskStatuses()))
	for _, status := range constants.AllTaskStatuses() {
		parts = append(parts, fmt.Sprintf("%d %s", counts[status], status))
	}
	return strings.Join(parts, " · ")
}
