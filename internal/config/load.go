package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/errors"
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Home is the faster home directory. Empty means Home().
	Home string

	// ConfigFile is an explicit config file (--config). When set it replaces
	// both the global and project files.
	ConfigFile string

	// ProjectConfig overrides the project config path. Empty means
	// ProjectConfigPath().
	ProjectConfig string

	// SkipEnvFile disables loading the dotenv file from the home directory.
	SkipEnvFile bool

	// Overrides are viper keys set from CLI flags, e.g. "claude.model".
	// They have the highest precedence.
	Overrides map[string]any
}

// newViperInstance creates a new Viper instance with standard faster configuration.
// This includes environment variable prefix (FASTER_), key replacer, and defaults.
func newViperInstance(home string) *viper.Viper {
	v := viper.New()
	setDefaults(v, home)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := expandPaths(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	return LoadWithOptions(ctx, LoadOptions{})
}

// LoadWithOptions is Load with explicit sources and CLI flag overrides.
func LoadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	home := opts.Home
	if home == "" {
		var err error
		if home, err = Home(); err != nil {
			return nil, errors.Wrap(err, "failed to resolve faster home")
		}
	}

	if !opts.SkipEnvFile {
		if err := LoadEnvFile(envFileIn(home)); err != nil {
			return nil, err
		}
	}

	v := newViperInstance(home)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) || isConfigNotFoundError(err) {
				return nil, errors.Wrapf(errors.ErrConfigNotFound, "%s", opts.ConfigFile)
			}
			return nil, errors.Wrapf(err, "failed to read config: %s", opts.ConfigFile)
		}
	} else {
		if err := readIfExists(v, globalConfigIn(home), false); err != nil {
			return nil, errors.Wrap(err, "failed to read global config file")
		}
		project := opts.ProjectConfig
		if project == "" {
			project = ProjectConfigPath()
		}
		if err := readIfExists(v, project, true); err != nil {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("queue.database", cfg.Queue.Database).
		Dur("queue.poll_interval", cfg.Queue.PollInterval).
		Str("claude.model", cfg.Claude.Model).
		Str("config_file", v.ConfigFileUsed()).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level. The dotenv file is not read.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	home, err := Home()
	if err != nil {
		home = constants.FasterHome
	}
	v := newViperInstance(home)

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left alone. A missing file is not an error.
func LoadEnvFile(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file: %s", path)
	}
	return nil
}

func readIfExists(v *viper.Viper, path string, merge bool) error {
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	var err error
	if merge {
		err = v.MergeInConfig()
	} else {
		err = v.ReadInConfig()
	}
	if err != nil && !isConfigNotFoundError(err) {
		return err
	}
	return nil
}

// expandPaths resolves a leading "~" in the configured file paths.
func expandPaths(cfg *Config) error {
	for _, p := range []*string{&cfg.Queue.Database, &cfg.Daemon.LockFile} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return errors.Wrapf(err, "failed to expand %s", *p)
		}
		*p = expanded
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the YAML tag names exactly and mirror DefaultConfigForHome.
func setDefaults(v *viper.Viper, home string) {
	d := DefaultConfigForHome(home)

	v.SetDefault("queue.database", d.Queue.Database)
	v.SetDefault("queue.poll_interval", d.Queue.PollInterval.String())
	v.SetDefault("queue.busy_timeout", d.Queue.BusyTimeout.String())

	v.SetDefault("claude.cli_path", d.Claude.CLIPath)
	v.SetDefault("claude.model", d.Claude.Model)
	v.SetDefault("claude.extra_args", []string{})

	v.SetDefault("intent.confidence_threshold", d.Intent.ConfidenceThreshold)

	v.SetDefault("stt.provider", d.STT.Provider)
	v.SetDefault("stt.language", d.STT.Language)
	v.SetDefault("stt.prompt", d.STT.Prompt)

	v.SetDefault("tts.provider", d.TTS.Provider)
	v.SetDefault("tts.voice", d.TTS.Voice)
	v.SetDefault("tts.rate", d.TTS.Rate)
	v.SetDefault("tts.enabled", d.TTS.Enabled)

	v.SetDefault("confirmation.mode", string(d.Confirmation.Mode))
	v.SetDefault("confirmation.timeout", d.Confirmation.Timeout.String())

	v.SetDefault("daemon.lock_file", d.Daemon.LockFile)
	v.SetDefault("daemon.stop_on_storage_error", d.Daemon.StopOnStorageError)
}

// viperDecoderOption returns the decoder option that turns duration strings
// ("1s", "500ms") and space-separated env values into their Go types.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(" "),
	))
}
