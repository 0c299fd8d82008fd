// Package config provides configuration management for faster.
//
// Configuration is loaded from multiple sources with the following precedence
// (highest to lowest):
//
//  1. CLI flags
//  2. Environment variables (FASTER_* prefix)
//  3. Project config (.faster/config.yaml)
//  4. Global config (~/.faster/config.yaml)
//  5. Built-in defaults
//
// An optional ~/.faster/.env file is loaded before the environment is read.
// Values already present in the environment win over the file.
package config

import "time"

// Config is the root configuration structure for faster.
// It contains all configurable settings organized by functional area.
type Config struct {
	// Queue contains task database settings.
	Queue QueueConfig `yaml:"queue" mapstructure:"queue"`

	// Claude contains settings for the claude CLI executor.
	Claude ClaudeConfig `yaml:"claude" mapstructure:"claude"`

	// Intent contains intent processor settings.
	Intent IntentConfig `yaml:"intent" mapstructure:"intent"`

	// STT contains speech-to-text settings for voice mode.
	STT STTConfig `yaml:"stt" mapstructure:"stt"`

	// TTS contains text-to-speech settings for spoken feedback.
	TTS TTSConfig `yaml:"tts" mapstructure:"tts"`

	// Confirmation controls when voice commands are confirmed before enqueueing.
	Confirmation ConfirmationConfig `yaml:"confirmation" mapstructure:"confirmation"`

	// Daemon contains dispatch loop settings.
	Daemon DaemonConfig `yaml:"daemon" mapstructure:"daemon"`
}

// QueueConfig contains task database settings.
type QueueConfig struct {
	// Database is the path to the SQLite task database.
	// Default: ~/.faster/knowledge.db
	Database string `yaml:"database" mapstructure:"database"`

	// PollInterval is how long the daemon sleeps when the queue is empty.
	// Must be between 100ms and 1m.
	// Default: 1s
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// BusyTimeout is how long a store operation waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" mapstructure:"busy_timeout"`
}

// ClaudeConfig contains settings for the claude CLI executor.
type ClaudeConfig struct {
	// CLIPath is the claude executable name or path.
	// Default: "claude"
	CLIPath string `yaml:"cli_path" mapstructure:"cli_path"`

	// Model is the model passed with --model when a task does not name one.
	// Empty means the CLI's own default.
	// Default: "sonnet"
	Model string `yaml:"model" mapstructure:"model"`

	// ExtraArgs are appended to every claude invocation.
	ExtraArgs []string `yaml:"extra_args,omitempty" mapstructure:"extra_args"`
}

// IntentConfig contains intent processor settings.
type IntentConfig struct {
	// ConfidenceThreshold is the confidence at or above which voice commands
	// are enqueued without confirmation in smart mode.
	// Default: 0.80
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// STTConfig contains speech-to-text settings.
type STTConfig struct {
	// Provider selects the capture backend. Only "macos-native" is supported.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Language is the recognition locale.
	Language string `yaml:"language" mapstructure:"language"`

	// Prompt is shown in the capture dialog.
	Prompt string `yaml:"prompt" mapstructure:"prompt"`
}

// TTSConfig contains text-to-speech settings.
type TTSConfig struct {
	// Provider selects the speech backend. Only "macos-native" is supported.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Voice is the system voice name passed to say -v.
	Voice string `yaml:"voice" mapstructure:"voice"`

	// Rate is the speaking rate in words per minute (50-500).
	Rate int `yaml:"rate" mapstructure:"rate"`

	// Enabled turns spoken feedback on or off.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ConfirmationMode controls when the voice loop asks before enqueueing.
type ConfirmationMode string

// Confirmation modes.
const (
	// ConfirmationSmart confirms only commands below the confidence threshold.
	ConfirmationSmart ConfirmationMode = "smart"

	// ConfirmationAlways confirms every command.
	ConfirmationAlways ConfirmationMode = "always"

	// ConfirmationNever enqueues every command without asking.
	ConfirmationNever ConfirmationMode = "never"
)

// Valid reports whether m is a known confirmation mode.
func (m ConfirmationMode) Valid() bool {
	switch m {
	case ConfirmationSmart, ConfirmationAlways, ConfirmationNever:
		return true
	}
	return false
}

// NeedsConfirmation reports whether a command with the given confidence
// must be confirmed under this mode.
func (m ConfirmationMode) NeedsConfirmation(confidence, threshold float64) bool {
	switch m {
	case ConfirmationAlways:
		return true
	case ConfirmationNever:
		return false
	case ConfirmationSmart:
		return confidence < threshold
	}
	return true
}

// ConfirmationConfig controls voice command confirmation.
type ConfirmationConfig struct {
	// Mode is one of smart, always or never.
	// Default: smart
	Mode ConfirmationMode `yaml:"mode" mapstructure:"mode"`

	// Timeout is the confirmation window.
	// Default: 1s
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DaemonConfig contains dispatch loop settings.
type DaemonConfig struct {
	// LockFile guards against two daemons draining the same queue.
	// Default: ~/.faster/daemon.lock
	LockFile string `yaml:"lock_file" mapstructure:"lock_file"`

	// StopOnStorageError aborts the loop when the database fails.
	// Default: true
	StopOnStorageError bool `yaml:"stop_on_storage_error" mapstructure:"stop_on_storage_error"`
}
