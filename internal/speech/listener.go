package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/config"
	fastererrors "github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/process"
)

// MacOSListener shows a dictation-ready dialog and returns what was entered.
type MacOSListener struct {
	prompt   string
	language string
	executor process.Executor
	logger   zerolog.Logger
}

// NewMacOSListener creates a listener from the stt config section.
func NewMacOSListener(cfg config.STTConfig, opts ...Option) *MacOSListener {
	o := applyOptions(opts)
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = config.DefaultSTTPrompt
	}
	return &MacOSListener{
		prompt:   prompt,
		language: cfg.Language,
		executor: o.executor,
		logger:   o.logger,
	}
}

// Capture blocks until the dialog is answered. An empty answer or a
// dismissed dialog returns errors.ErrNoInput.
func (l *MacOSListener) Capture(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, osascriptCmd, "-e", l.script())
	out, stderr, err := l.executor.Execute(ctx, cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", fastererrors.ErrSpeechUnavailable, osascriptCmd)
		}
		l.logger.Debug().Err(err).Str("stderr", strings.TrimSpace(string(stderr))).Msg("capture dialog dismissed")
		return "", fmt.Errorf("%w: dialog dismissed", fastererrors.ErrNoInput)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fastererrors.ErrNoInput
	}

	l.logger.Debug().Int("length", len(text)).Str("language", l.language).Msg("utterance captured")
	return text, nil
}

func (l *MacOSListener) script() string {
	return `tell application "System Events"
	set textReturned to text returned of (display dialog "` + appleScriptEscape(l.prompt) +
		`" default answer "" buttons {"Cancel", "OK"} default button "OK")
	return textReturned
end tell`
}

// appleScriptEscape quotes s for use inside an AppleScript string literal.
func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
