// Package cli provides the command-line interface for faster.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/faster/internal/errors"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// It is set during PersistentPreRunE and read through GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed. Before that it returns a zero-value logger that discards output.
//
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates and returns the root command for the faster CLI.
// Invoked with arguments and no subcommand, it queues them as a directive;
// with no arguments it starts voice mode.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "faster [directive...]",
		Short: "Voice-driven task queue for Claude Code",
		Long: `faster turns spoken or typed requests into directives, queues them in a
local SQLite database and runs them one at a time through the Claude Code CLI.

Features:
  • Deterministic intent extraction (orchestrate, research, code, test)
  • Durable FIFO task queue shared by every terminal
  • Background daemon that drains the queue
  • macOS voice capture and spoken confirmations

Run with no arguments to start voice mode. Arguments are queued as one
directive, except when the first word names a command: quote such directives
or pass them to 'faster add' ("faster add show me the logs").

Examples:
  faster                          # Speak directives
  faster "run the tests"          # Queue a directive
  faster add status of the build  # Queue a directive that starts with a command name
  faster daemon                   # Process the queue
  faster status                   # Show the queue`,
		Version: formatVersion(info),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runVoice(cmd, false)
			}
			return runAdd(cmd, args, opts)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// We print our own error messages.
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Claude model for this directive (default from config)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "queue the text as-is without intent processing")

	AddAddCommand(cmd)
	AddParseCommand(cmd)
	AddVoiceCommand(cmd)
	AddDaemonCommand(cmd)
	AddStatusCommand(cmd)
	AddShowCommand(cmd)
	AddCancelCommand(cmd)
	AddClearCommand(cmd)
	AddConfigCommand(cmd)
	AddSetupCommand(cmd)
	AddDoctorCommand(cmd)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	return cmd.ExecuteContext(ctx)
}
