package config

import (
	"path/filepath"

	"github.com/mrz1836/faster/internal/constants"
)

// Default values for settings without a shared constant.
const (
	// DefaultClaudeCLIPath is the claude executable looked up on PATH.
	DefaultClaudeCLIPath = "claude"

	// DefaultClaudeModel is the model used when neither the task nor the config names one.
	DefaultClaudeModel = "sonnet"

	// ProviderMacOSNative is the only supported speech backend.
	ProviderMacOSNative = "macos-native"

	// DefaultSTTLanguage is the default recognition locale.
	DefaultSTTLanguage = "en-US"

	// DefaultSTTPrompt is the text shown in the capture dialog.
	DefaultSTTPrompt = "What should faster do?"

	// DefaultTTSVoice is the default system voice.
	DefaultTTSVoice = "Samantha"

	// DefaultTTSRate is the default speaking rate in words per minute.
	DefaultTTSRate = 200
)

// DefaultConfig returns a Config with defaults rooted at the faster home
// directory. When the home directory cannot be resolved the paths are
// relative to the working directory.
func DefaultConfig() *Config {
	home, err := Home()
	if err != nil {
		home = constants.FasterHome
	}
	return DefaultConfigForHome(home)
}

// DefaultConfigForHome returns a Config with defaults rooted at home.
func DefaultConfigForHome(home string) *Config {
	return &Config{
		Queue: QueueConfig{
			Database:     filepath.Join(home, constants.DatabaseFileName),
			PollInterval: constants.DefaultPollInterval,
			BusyTimeout:  constants.DefaultBusyTimeout,
		},
		Claude: ClaudeConfig{
			CLIPath: DefaultClaudeCLIPath,
			Model:   DefaultClaudeModel,
		},
		Intent: IntentConfig{
			ConfidenceThreshold: constants.DefaultConfidenceThreshold,
		},
		STT: STTConfig{
			Provider: ProviderMacOSNative,
			Language: DefaultSTTLanguage,
			Prompt:   DefaultSTTPrompt,
		},
		TTS: TTSConfig{
			Provider: ProviderMacOSNative,
			Voice:    DefaultTTSVoice,
			Rate:     DefaultTTSRate,
			Enabled:  true,
		},
		Confirmation: ConfirmationConfig{
			Mode:    ConfirmationSmart,
			Timeout: constants.DefaultConfirmationTimeout,
		},
		Daemon: DaemonConfig{
			LockFile:           filepath.Join(home, constants.DaemonLockFileName),
			StopOnStorageError: true,
		},
	}
}
