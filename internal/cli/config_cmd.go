package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/tui"
)

// runEditor opens path in editor with the terminal attached. Replaced in tests.
//
//nolint:gochecknoglobals // test seam
var runEditor = func(ctx context.Context, editor, path string) error {
	cmd := exec.CommandContext(ctx, editor, path) //nolint:gosec // editor comes from $EDITOR
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, edit or locate configuration",
		Long: `Configuration is read from, lowest to highest precedence:
  built-in defaults
  ~/.faster/config.yaml        (global)
  .faster/config.yaml          (project, current directory)
  FASTER_* environment variables, also loaded from ~/.faster/.env
  command-line flags

Set FASTER_HOME to move ~/.faster.`,
	}

	cmd.AddCommand(newConfigShowCmd(), newConfigEditCmd(), newConfigPathCmd())
	root.AddCommand(cmd)
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			format := outputFormat(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return silenceJSONError(cmd, handleError(format, err))
			}
			return silenceJSONError(cmd, runConfigShow(w, format, cfg))
		},
	}
}

// runConfigShow prints cfg as YAML, or as JSON with the same keys.
func runConfigShow(w io.Writer, format string, cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return handleError(format, err)
	}

	if format == OutputJSON {
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return handleError(format, fmt.Errorf("failed to convert config: %w", err))
		}
		return tui.NewJSONOutput(w).JSON(doc)
	}

	_, err = w.Write(data)
	return err
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the global config file in $EDITOR",
		Long: `Open the global config file (or the file named by --config) in $EDITOR,
creating it with defaults first if it does not exist. The result is validated
after the editor exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cmd.Flag("config").Value.String()
			if path == "" {
				var err error
				if path, err = config.GlobalConfigPath(); err != nil {
					return err
				}
			}
			return runConfigEdit(cmd.Context(), cmd.OutOrStdout(), path, config.EditorCommand())
		},
	}
}

// runConfigEdit creates path if needed, opens it and validates the result.
func runConfigEdit(ctx context.Context, w io.Writer, path, editor string) error {
	out := tui.NewTTYOutput(w)

	if err := config.Write(config.DefaultConfig(), path, false); err == nil {
		out.Info("Created " + path)
	} else if !stderrors.Is(err, errors.ErrConfigExists) {
		return err
	}

	if err := runEditor(ctx, editor, path); err != nil {
		return fmt.Errorf("%w: %s %s: %w", errors.ErrCommandFailed, editor, path, err)
	}

	if _, err := config.LoadWithOptions(ctx, config.LoadOptions{ConfigFile: path, SkipEnvFile: true}); err != nil {
		out.Warning("Config has errors: " + err.Error())
		return err
	}
	out.Success("Config is valid")
	return nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where configuration, data and logs live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			format := outputFormat(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return silenceJSONError(cmd, handleError(format, err))
			}
			paths, err := collectPaths(cmd.Flag("config").Value.String(), cfg)
			if err != nil {
				return silenceJSONError(cmd, handleError(format, err))
			}
			return runConfigPath(w, format, paths)
		},
	}
}

// pathEntry is one location shown by config path.
type pathEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

func collectPaths(configFile string, cfg *config.Config) ([]pathEntry, error) {
	global := configFile
	if global == "" {
		var err error
		if global, err = config.GlobalConfigPath(); err != nil {
			return nil, err
		}
	}
	envFile, err := config.EnvFilePath()
	if err != nil {
		return nil, err
	}
	logFile, err := config.LogFilePath()
	if err != nil {
		return nil, err
	}

	entries := []pathEntry{
		{Name: "config", Path: global},
		{Name: "project", Path: config.ProjectConfigPath()},
		{Name: "env", Path: envFile},
		{Name: "database", Path: cfg.Queue.Database},
		{Name: "lock", Path: cfg.Daemon.LockFile},
		{Name: "log", Path: logFile},
	}
	for i := range entries {
		_, statErr := os.Stat(entries[i].Path)
		entries[i].Exists = statErr == nil
	}
	return entries, nil
}

func runConfigPath(w io.Writer, format string, entries []pathEntry) error {
	if format == OutputJSON {
		return tui.NewJSONOutput(w).JSON(entries)
	}
	for _, e := range entries {
		line := tui.StyleBold.Render(fmt.Sprintf("%-9s", e.Name)) + " " + e.Path
		if !e.Exists {
			line += " " + tui.StyleDim.Render("(missing)")
		}
		_, _ = fmt.Fprintln(w, line)
	}
	return nil
}
