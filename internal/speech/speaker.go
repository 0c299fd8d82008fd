package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/config"
	fastererrors "github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/process"
)

// MacOSSpeaker speaks through the say command. A disabled speaker accepts
// every call and does nothing.
type MacOSSpeaker struct {
	voice    string
	rate     int
	enabled  bool
	executor process.Executor
	logger   zerolog.Logger
}

// NewMacOSSpeaker creates a speaker from the tts config section.
func NewMacOSSpeaker(cfg config.TTSConfig, opts ...Option) *MacOSSpeaker {
	o := applyOptions(opts)
	voice := cfg.Voice
	if voice == "" {
		voice = config.DefaultTTSVoice
	}
	rate := cfg.Rate
	if rate <= 0 {
		rate = config.DefaultTTSRate
	}
	return &MacOSSpeaker{
		voice:    voice,
		rate:     rate,
		enabled:  cfg.Enabled,
		executor: o.executor,
		logger:   o.logger,
	}
}

// Enabled reports whether the speaker produces audio.
func (s *MacOSSpeaker) Enabled() bool {
	return s.enabled
}

// Speak says text and waits for it to finish.
func (s *MacOSSpeaker) Speak(ctx context.Context, text string) error {
	if !s.enabled || strings.TrimSpace(text) == "" {
		return nil
	}
	if err := run(ctx, s.executor, sayCmd, s.args(text)...); err != nil {
		return s.wrap(err)
	}
	return nil
}

// SpeakAsync starts saying text and returns without waiting.
func (s *MacOSSpeaker) SpeakAsync(text string) error {
	if !s.enabled || strings.TrimSpace(text) == "" {
		return nil
	}
	cmd := exec.Command(sayCmd, s.args(text)...) //nolint:noctx // speech outlives the caller
	if err := s.executor.Start(cmd); err != nil {
		return s.wrap(err)
	}
	return nil
}

// Voices lists the installed voice names.
func (s *MacOSSpeaker) Voices(ctx context.Context) ([]string, error) {
	out, _, err := s.executor.Execute(ctx, exec.CommandContext(ctx, sayCmd, "-v", "?"))
	if err != nil {
		return nil, s.wrap(err)
	}
	return parseVoices(out), nil
}

func (s *MacOSSpeaker) args(text string) []string {
	return []string{"-v", s.voice, "-r", strconv.Itoa(s.rate), text}
}

func (s *MacOSSpeaker) wrap(err error) error {
	s.logger.Debug().Err(err).Msg("say failed")
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", fastererrors.ErrSpeechUnavailable, sayCmd)
	}
	return fmt.Errorf("%w: say: %w", fastererrors.ErrCommandFailed, err)
}

// parseVoices takes the first word of each line of `say -v ?` output.
func parseVoices(out []byte) []string {
	var voices []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			voices = append(voices, fields[0])
		}
	}
	return voices
}
