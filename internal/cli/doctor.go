package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/ai"
	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/daemon"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/speech"
	"github.com/mrz1836/faster/internal/tui"
)

// checkResult is one non-tool doctor check.
type checkResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail"`
	Warning bool   `json:"warning,omitempty"`
}

// doctorReport is the JSON shape printed by doctor.
type doctorReport struct {
	Tools         []config.Tool `json:"tools"`
	Checks        []checkResult `json:"checks"`
	DaemonRunning bool          `json:"daemon_running"`
}

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the installation",
		Long: `Check that the Claude Code CLI, the macOS speech tools and $EDITOR are
installed, that the config file and task database are readable, and that
the configured tts.voice is installed.
Exits non-zero when a required tool is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			format := outputFormat(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return silenceJSONError(cmd, handleError(format, err))
			}
			configPath := cmd.Flag("config").Value.String()
			if configPath == "" {
				if configPath, err = config.GlobalConfigPath(); err != nil {
					return silenceJSONError(cmd, handleError(format, err))
				}
			}
			logger := GetLogger()
			runner := ai.NewClaudeCodeRunner(cfg.Claude, nil, ai.WithClaudeLogger(logger))
			detector := config.NewToolDetector(cfg.Claude.CLIPath,
				config.WithVersionCheck(config.ToolClaude, runner.CheckInstalled))
			speaker := speech.NewMacOSSpeaker(cfg.TTS, speech.WithLogger(logger))
			return silenceJSONError(cmd, runDoctorWithDeps(cmd.Context(), w, format, detector, speaker, cfg, configPath))
		},
	}
	root.AddCommand(cmd)
}

// runDoctorWithDeps runs every check and prints the report.
func runDoctorWithDeps(
	ctx context.Context,
	w io.Writer,
	format string,
	detector config.ToolDetector,
	voices VoiceLister,
	cfg *config.Config,
	configPath string,
) error {
	tools, err := detector.Detect(ctx)
	if err != nil {
		return handleError(format, err)
	}

	report := doctorReport{
		Tools: tools.Tools,
		Checks: []checkResult{
			checkConfigFile(configPath),
			checkDatabase(ctx, cfg),
			checkVoice(ctx, voices, cfg.TTS.Voice),
		},
		DaemonRunning: daemon.IsRunning(cfg.Daemon.LockFile),
	}

	var result error
	if tools.HasMissingRequired {
		names := make([]string, 0, len(tools.MissingRequiredTools()))
		for _, t := range tools.MissingRequiredTools() {
			names = append(names, t.Name)
		}
		result = fmt.Errorf("%w: %v", errors.ErrMissingRequiredTools, names)
	}

	if format == OutputJSON {
		if err := tui.NewJSONOutput(w).JSON(report); err != nil {
			return err
		}
		if result != nil {
			return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, result)
		}
		return nil
	}

	printDoctorReport(w, report)
	return result
}

// VoiceLister lists the installed text-to-speech voices.
type VoiceLister interface {
	Voices(ctx context.Context) ([]string, error)
}

// checkVoice confirms tts.voice is installed. Speech is optional, so every
// failure is a warning.
func checkVoice(ctx context.Context, voices VoiceLister, voice string) checkResult {
	if voice == "" {
		voice = config.DefaultTTSVoice
	}
	names, err := voices.Voices(ctx)
	switch {
	case stderrors.Is(err, errors.ErrSpeechUnavailable):
		return checkResult{Name: "voice", Detail: voice + " not checked; say is unavailable", Warning: true}
	case err != nil:
		return checkResult{Name: "voice", Detail: errors.UserMessage(err), Warning: true}
	}
	for _, name := range names {
		if strings.EqualFold(name, voice) {
			return checkResult{Name: "voice", OK: true, Detail: voice}
		}
	}
	return checkResult{Name: "voice", Detail: voice + " is not installed; list voices with 'say -v ?'", Warning: true}
}

func checkConfigFile(path string) checkResult {
	if _, err := os.Stat(path); err != nil {
		return checkResult{Name: "config", Detail: path + " not found; run 'faster setup'", Warning: true}
	}
	return checkResult{Name: "config", OK: true, Detail: path}
}

// checkDatabase opens an existing database and counts tasks. A missing
// database is only a warning since the first add creates it.
func checkDatabase(ctx context.Context, cfg *config.Config) checkResult {
	path := cfg.Queue.Database
	if _, err := os.Stat(path); err != nil {
		return checkResult{Name: "database", Detail: path + " not yet created", Warning: true}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return checkResult{Name: "database", Detail: errors.UserMessage(err)}
	}
	defer func() { _ = store.Close() }()

	counts, err := store.Counts(ctx)
	if err != nil {
		return checkResult{Name: "database", Detail: errors.UserMessage(err)}
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return checkResult{Name: "database", OK: true, Detail: fmt.Sprintf("%s (%d tasks)", path, total)}
}

func printDoctorReport(w io.Writer, report doctorReport) {
	out := tui.NewTTYOutput(w)
	_, _ = fmt.Fprintln(w, tui.StyleBold.Render("Tools"))
	for _, t := range report.Tools {
		label := fmt.Sprintf("%s (%s)", t.Name, t.Purpose)
		switch t.Status {
		case config.ToolStatusInstalled:
			detail := t.Path
			if t.CurrentVersion != "" {
				detail = t.CurrentVersion + " " + detail
			}
			out.Success(label + " " + tui.StyleDim.Render(detail))
		case config.ToolStatusOutdated:
			out.Warning(fmt.Sprintf("%s %s < %s: %s", label, t.CurrentVersion, t.MinVersion, t.InstallHint))
		default:
			if t.Required {
				_, _ = fmt.Fprintln(w, tui.NewOutputStyles().Error.Render("✗ "+label+" missing: "+t.InstallHint))
			} else {
				out.Warning(label + " missing: " + t.InstallHint)
			}
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, tui.StyleBold.Render("Checks"))
	for _, c := range report.Checks {
		switch {
		case c.OK:
			out.Success(c.Name + " " + tui.StyleDim.Render(c.Detail))
		case c.Warning:
			out.Warning(c.Name + " " + c.Detail)
		default:
			_, _ = fmt.Fprintln(w, tui.NewOutputStyles().Error.Render("✗ "+c.Name+" "+c.Detail))
		}
	}

	_, _ = fmt.Fprintln(w)
	if report.DaemonRunning {
		out.Info("Daemon is running")
	} else {
		_, _ = fmt.Fprintln(w, tui.StyleDim.Render("Daemon is not running"))
	}
}
