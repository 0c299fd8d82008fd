package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/ai"
	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/daemon"
	"github.com/mrz1836/faster/internal/domain"
	"github.com/mrz1836/faster/internal/signal"
	"github.com/mrz1836/faster/internal/speech"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

type daemonOptions struct {
	once  bool
	speak bool
}

// AddDaemonCommand adds the daemon command to the root command.
func AddDaemonCommand(root *cobra.Command) {
	var opts daemonOptions

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Process queued directives one at a time",
		Long: `Run the dispatch loop. The daemon claims the oldest queued task, runs it
through the Claude Code CLI in the current directory and records whether it
completed or failed. When the queue is empty it polls every
queue.poll_interval.

Only one daemon may run per queue. Ctrl+C stops the loop; a directive that
is already running is allowed to finish first.

Examples:
  faster daemon           # Run until interrupted
  faster daemon --once    # Drain the queue and exit
  faster daemon --speak   # Announce each result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.once, "once", false, "exit when the queue is empty")
	cmd.Flags().BoolVar(&opts.speak, "speak", false, "announce finished tasks with text-to-speech")
	root.AddCommand(cmd)
}

// runDaemon wires production dependencies for the dispatch loop.
func runDaemon(cmd *cobra.Command, opts daemonOptions) error {
	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()
	logger := GetLogger()

	return withStore(cmd, func(cfg *config.Config, store *task.SQLiteStore) error {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		runner := ai.NewClaudeCodeRunner(cfg.Claude, nil, ai.WithClaudeLogger(logger))

		w := cmd.OutOrStdout()
		format := outputFormat(cmd)

		var speaker speech.Speaker
		if opts.speak {
			speaker = announcer(w, format, speech.NewMacOSSpeaker(cfg.TTS, speech.WithLogger(logger)))
		}

		dcfg := daemon.Config{
			PollInterval:       cfg.Queue.PollInterval,
			LockFile:           cfg.Daemon.LockFile,
			WorkingDir:         wd,
			Once:               opts.once,
			StopOnStorageError: cfg.Daemon.StopOnStorageError,
		}

		if format == OutputText {
			_, _ = fmt.Fprintln(w, tui.StyleBold.Render("🚀 Starting daemon"))
			_, _ = fmt.Fprintln(w, tui.StyleDim.Render("queue: "+store.Path()))
			_, _ = fmt.Fprintln(w)
		}

		err = runDaemonWithDeps(handler.Context(), w, format, store, runner, dcfg, speaker)
		if err == nil && handler.Received() != nil && format == OutputText {
			_, _ = fmt.Fprintln(w, tui.StyleDim.Render("stopped by "+handler.Received().String()))
		}
		return err
	})
}

// toggledSpeaker is a Speaker that config can switch off.
type toggledSpeaker interface {
	speech.Speaker
	Enabled() bool
}

// announcer returns s when it produces audio. Otherwise it warns and returns
// nil so finished tasks are not announced.
func announcer(w io.Writer, format string, s toggledSpeaker) speech.Speaker {
	if s.Enabled() {
		return s
	}
	logger := GetLogger()
	logger.Warn().Msg("--speak given but tts.enabled is false")
	if format == OutputText {
		tui.NewTTYOutput(w).Warning("--speak ignored: tts.enabled is false")
	}
	return nil
}

// runDaemonWithDeps runs the dispatch loop and prints progress for each task.
// speaker may be nil.
func runDaemonWithDeps(
	ctx context.Context,
	w io.Writer,
	format string,
	store task.Store,
	runner ai.Runner,
	cfg daemon.Config,
	speaker speech.Speaker,
) error {
	out := tui.NewOutput(w, format)
	text := format != OutputJSON

	d := daemon.New(store, runner, cfg,
		daemon.WithLogger(GetLogger()),
		daemon.WithOnStart(func(t *domain.Task) {
			if text {
				_, _ = fmt.Fprintf(w, "%s [%s] %s\n", tui.RenderStatus(t.Status), t.ID, t.Command)
			}
		}),
		daemon.WithOnFinish(func(o daemon.Outcome) {
			if text {
				printOutcome(out, o)
			}
			announce(speaker, o)
		}),
	)

	stats, err := d.Run(ctx)
	if err != nil {
		return handleError(format, err)
	}

	if !text {
		return out.JSON(stats)
	}
	if stats.Recovered > 0 {
		out.Warning(fmt.Sprintf("Marked %d interrupted task(s) failed", stats.Recovered))
	}
	if stats.Processed > 0 || cfg.Once {
		_, _ = fmt.Fprintln(w)
		out.Info(fmt.Sprintf("Processed %d task(s): %d completed, %d failed", stats.Processed, stats.Completed, stats.Failed))
	}
	return nil
}

func printOutcome(out tui.Output, o daemon.Outcome) {
	duration := tui.FormatDuration(o.Task.Duration())
	if o.Succeeded() {
		out.Success(fmt.Sprintf("[%s] Completed in %s", o.Task.ID, duration))
		return
	}
	message := o.Task.Error
	if message == "" {
		message = ai.FailureMessage(o.Result, o.Err)
	}
	out.Warning(fmt.Sprintf("[%s] Failed after %s: %s", o.Task.ID, duration, message))
}

func announce(speaker speech.Speaker, o daemon.Outcome) {
	if speaker == nil {
		return
	}
	phrase := "Task completed"
	if !o.Succeeded() {
		phrase = "Task failed"
	}
	if err := speaker.SpeakAsync(phrase); err != nil {
		logger := GetLogger()
		logger.Debug().Err(err).Msg("announce failed")
	}
}
