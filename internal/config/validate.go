package config

import (
	"time"

	"github.com/mrz1836/faster/internal/errors"
)

// Bounds enforced by Validate.
const (
	MinPollInterval = 100 * time.Millisecond
	MaxPollInterval = time.Minute
	MinTTSRate      = 50
	MaxTTSRate      = 500
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - queue.database must not be empty
//   - queue.poll_interval must be between 100ms and 1m
//   - queue.busy_timeout must not be negative
//   - claude.cli_path must not be empty
//   - intent.confidence_threshold must be between 0 and 1
//   - tts.rate must be between 50 and 500
//   - confirmation.mode must be smart, always or never
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateQueueConfig(&cfg.Queue); err != nil {
		return err
	}

	if cfg.Claude.CLIPath == "" {
		return errors.Wrap(errors.ErrConfigInvalidClaude,
			"claude.cli_path must not be empty")
	}

	if t := cfg.Intent.ConfidenceThreshold; t < 0 || t > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidIntent,
			"intent.confidence_threshold must be between 0 and 1, got %v", t)
	}

	if err := validateSpeechConfig(cfg); err != nil {
		return err
	}

	if !cfg.Confirmation.Mode.Valid() {
		return errors.Wrapf(errors.ErrConfigInvalidConfirmation,
			"confirmation.mode must be smart, always or never, got %q", cfg.Confirmation.Mode)
	}
	if cfg.Confirmation.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidConfirmation,
			"confirmation.timeout must not be negative, got %s", cfg.Confirmation.Timeout)
	}

	return nil
}

// validateQueueConfig checks task database settings.
func validateQueueConfig(cfg *QueueConfig) error {
	if cfg.Database == "" {
		return errors.Wrap(errors.ErrConfigInvalidQueue,
			"queue.database must not be empty")
	}

	if cfg.PollInterval < MinPollInterval || cfg.PollInterval > MaxPollInterval {
		return errors.Wrapf(errors.ErrConfigInvalidQueue,
			"queue.poll_interval must be between %s and %s, got %s",
			MinPollInterval, MaxPollInterval, cfg.PollInterval)
	}

	if cfg.BusyTimeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidQueue,
			"queue.busy_timeout must not be negative, got %s", cfg.BusyTimeout)
	}

	return nil
}

// validateSpeechConfig checks stt and tts settings.
func validateSpeechConfig(cfg *Config) error {
	if cfg.STT.Provider != ProviderMacOSNative {
		return errors.Wrapf(errors.ErrConfigInvalidSpeech,
			"stt.provider must be %s, got %q", ProviderMacOSNative, cfg.STT.Provider)
	}
	if cfg.TTS.Provider != ProviderMacOSNative {
		return errors.Wrapf(errors.ErrConfigInvalidSpeech,
			"tts.provider must be %s, got %q", ProviderMacOSNative, cfg.TTS.Provider)
	}
	if cfg.TTS.Rate < MinTTSRate || cfg.TTS.Rate > MaxTTSRate {
		return errors.Wrapf(errors.ErrConfigInvalidSpeech,
			"tts.rate must be between %d and %d, got %d", MinTTSRate, MaxTTSRate, cfg.TTS.Rate)
	}
	return nil
}
