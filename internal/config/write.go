package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/faster/internal/errors"
)

// Marshal renders cfg as YAML, the same shape Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.ErrConfigNil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// Write saves cfg to path, creating the parent directory. An existing file
// is only replaced when overwrite is true.
func Write(cfg *Config, path string, overwrite bool) error {
	if !overwrite && fileExists(path) {
		return errors.Wrapf(errors.ErrConfigExists, "%s", path)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write config: %s", path)
	}
	return nil
}
