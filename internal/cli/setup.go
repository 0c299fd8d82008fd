package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/speech"
	"github.com/mrz1836/faster/internal/tui"
)

// setupResult is the JSON shape printed by setup.
type setupResult struct {
	Config       string `json:"config"`
	Database     string `json:"database"`
	VoiceWarning string `json:"voice_warning,omitempty"`
}

// AddSetupCommand adds the setup command to the root command.
func AddSetupCommand(root *cobra.Command) {
	var force bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write the default config and create the task database",
		Long: `Write ~/.faster/config.yaml with default settings and create the task
database. An existing config file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			format := outputFormat(cmd)

			path := cmd.Flag("config").Value.String()
			if path == "" {
				var err error
				if path, err = config.GlobalConfigPath(); err != nil {
					return silenceJSONError(cmd, handleError(format, err))
				}
			}
			speaker := speech.NewMacOSSpeaker(config.DefaultConfig().TTS, speech.WithLogger(GetLogger()))
			return silenceJSONError(cmd, runSetup(cmd.Context(), w, format, path, force, speaker))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	root.AddCommand(cmd)
}

// runSetup writes the default config to path, initializes the database and
// warns when the default voice is not installed.
func runSetup(ctx context.Context, w io.Writer, format, path string, force bool, voices VoiceLister) error {
	cfg := config.DefaultConfig()

	if err := config.Write(cfg, path, force); err != nil {
		if stderrors.Is(err, errors.ErrConfigExists) {
			err = errors.NewExitCode2Error(fmt.Errorf("%w (use --force to overwrite)", err))
		}
		return handleError(format, err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return handleError(format, err)
	}
	_ = store.Close()

	logger := GetLogger()

	logger.Info().Str("config", path).Str("database", cfg.Queue.Database).Msg("setup complete")

	result := setupResult{Config: path, Database: cfg.Queue.Database}
	if voice := checkVoice(ctx, voices, cfg.TTS.Voice); !voice.OK {
		result.VoiceWarning = "voice " + voice.Detail
	}

	if format == OutputJSON {
		return tui.NewJSONOutput(w).JSON(result)
	}

	out := tui.NewTTYOutput(w)
	out.Success("Created config file: " + path)
	out.Success("Created task database: " + cfg.Queue.Database)
	if result.VoiceWarning != "" {
		out.Warning(result.VoiceWarning)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Defaults:")
	_, _ = fmt.Fprintf(w, "  • Speech: %s (%s voice)\n", cfg.STT.Provider, cfg.TTS.Voice)
	_, _ = fmt.Fprintf(w, "  • Claude model: %s\n", cfg.Claude.Model)
	_, _ = fmt.Fprintf(w, "  • Confirmation: %s below %.0f%% confidence\n", cfg.Confirmation.Mode, cfg.Intent.ConfidenceThreshold*100)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, tui.StyleDim.Render("Edit with 'faster config edit'; check tools with 'faster doctor'."))
	return nil
}
