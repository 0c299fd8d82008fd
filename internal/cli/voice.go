package cli

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/intent"
	"github.com/mrz1836/faster/internal/logging"
	"github.com/mrz1836/faster/internal/signal"
	"github.com/mrz1836/faster/internal/speech"
	"github.com/mrz1836/faster/internal/task"
	"github.com/mrz1836/faster/internal/tui"
)

// confirmFunc asks whether cmd should be queued.
type confirmFunc func(cmd *intent.Command) (bool, error)

// voiceDeps holds what the voice loop talks to.
type voiceDeps struct {
	listener  speech.Listener
	speaker   speech.Speaker
	processor *intent.Processor
	queue     TaskEnqueuer
	confirm   confirmFunc
	mode      config.ConfirmationMode
	model     string
}

// speechAvailable checks the speech backends. Replaced in tests.
//
//nolint:gochecknoglobals // test seam
var speechAvailable = speech.Available

// AddVoiceCommand adds the voice command to the root command.
func AddVoiceCommand(root *cobra.Command) {
	var debug bool

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Speak directives and queue them",
		Long: `Start voice mode. Press Enter, speak (or type into the dictation dialog),
and the request is turned into a directive and queued. The detected intent is
spoken back.

Commands below intent.confidence_threshold are confirmed first when
confirmation.mode is "smart"; "always" confirms every command and "never"
queues without asking.

Voice mode needs macOS (osascript and say). Press Ctrl+C to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVoice(cmd, debug)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "print intent, directive and confidence for each command")
	root.AddCommand(cmd)
}

// runVoice wires production dependencies for voice mode.
func runVoice(cmd *cobra.Command, debug bool) error {
	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()
	ctx := handler.Context()
	logger := GetLogger()

	return withStore(cmd, func(cfg *config.Config, store *task.SQLiteStore) error {
		w := cmd.OutOrStdout()
		out := tui.NewOutput(w, OutputText)

		available := speechAvailable(ctx, speech.WithLogger(logger))
		if !available.Input {
			return fmt.Errorf("speech-to-text: %w", errors.ErrSpeechUnavailable)
		}
		if !available.Output && cfg.TTS.Enabled {
			out.Warning("Text-to-speech not available; responses will not be spoken")
			cfg.TTS.Enabled = false
		}

		deps := voiceDeps{
			listener:  speech.NewMacOSListener(cfg.STT, speech.WithLogger(logger)),
			speaker:   speech.NewMacOSSpeaker(cfg.TTS, speech.WithLogger(logger)),
			processor: newProcessor(cfg),
			queue:     store,
			mode:      cfg.Confirmation.Mode,
			model:     cfg.Claude.Model,
			confirm: func(c *intent.Command) (bool, error) {
				return tui.ConfirmWithTimeout(
					fmt.Sprintf("Queue %s task?", c.Intent.Title()),
					c.Directive,
					true,
					cfg.Confirmation.Timeout,
				)
			},
		}

		_, _ = fmt.Fprintln(w, tui.StyleBold.Render("🎤 faster · voice mode"))
		if debug {
			out.Warning("debug output enabled")
		}
		out.Success("Voice mode ready")
		_, _ = fmt.Fprintln(w)

		return runVoiceLoop(ctx, cmd.InOrStdin(), w, deps, debug)
	})
}

// runVoiceLoop waits for Enter, captures an utterance and queues the
// resulting directive until in is closed or ctx is canceled.
func runVoiceLoop(ctx context.Context, in io.Reader, w io.Writer, deps voiceDeps, debug bool) error {
	logger := GetLogger().With().Str("component", "voice").Logger()
	out := tui.NewOutput(w, OutputText)
	lines := readLines(ctx, in)

	for {
		_, _ = fmt.Fprintln(w, tui.StyleDim.Render("Press Enter to speak, or Ctrl+C to exit"))

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-lines:
			if !ok {
				return nil
			}
		}

		transcript, err := deps.listener.Capture(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case stderrors.Is(err, errors.ErrNoInput):
			out.Warning("Nothing heard")
			continue
		case stderrors.Is(err, errors.ErrSpeechUnavailable):
			return err
		default:
			logger.Warn().Err(err).Msg("speech capture failed")
			if debug {
				out.Error(err)
			}
			continue
		}

		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%s %s\n", tui.StyleBold.Render("📝 You said:"), transcript)

		command := deps.processor.Process(transcript)
		if debug {
			_, _ = fmt.Fprintf(w, "🎯 Intent: %s\n", command.Intent)
			_, _ = fmt.Fprintf(w, "📋 Directive: %s\n", command.Directive)
			_, _ = fmt.Fprintf(w, "🎲 Confidence: %.0f%%\n", command.Confidence*100)
		}

		if command.Directive == "" {
			out.Warning("Nothing to queue after cleaning")
			continue
		}

		if deps.mode.NeedsConfirmation(command.Confidence, deps.processor.Threshold()) {
			ok, err := deps.confirm(command)
			if err != nil && !stderrors.Is(err, errors.ErrOperationCanceled) {
				return err
			}
			if !ok {
				out.Info("Skipped")
				_, _ = fmt.Fprintln(w)
				continue
			}
		}

		id, err := deps.queue.Enqueue(ctx, command.Directive, deps.model)
		if err != nil {
			out.Error(fmt.Errorf("failed to queue: %w", err))
			continue
		}

		logger.Info().
			Str("task_id", id).
			Str("intent", command.Intent.String()).
			Str("directive", logging.Directive(command.Directive)).
			Msg("voice task queued")
		out.Success(fmt.Sprintf("Queued [%s] %s", id, command.Directive))

		if err := deps.speaker.SpeakAsync(command.Intent.Title()); err != nil {
			logger.Debug().Err(err).Msg("speak failed")
		}
		_, _ = fmt.Fprintln(w)
	}
}

// readLines delivers one value per line read from in. The channel closes at
// EOF. The reader goroutine exits after ctx is canceled and the next line
// (or EOF) arrives.
func readLines(ctx context.Context, in io.Reader) <-chan struct{} {
	lines := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
