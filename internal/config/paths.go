package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/faster/internal/constants"
)

// Home returns the faster home directory: $FASTER_HOME when set,
// otherwise ~/.faster.
func Home() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return ExpandHome(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.FasterHome), nil
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return globalConfigIn(dir), nil
}

// ProjectConfigPath returns the path to the project config file,
// relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.GlobalConfigName)
}

// EnvFilePath returns the path to the optional dotenv file.
func EnvFilePath() (string, error) {
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return envFileIn(dir), nil
}

// LogFilePath returns the path to the rotated CLI log file.
func LogFilePath() (string, error) {
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir, constants.CLILogFileName), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Other paths are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func globalConfigIn(home string) string {
	return filepath.Join(home, constants.GlobalConfigName)
}

func envFileIn(home string) string {
	return filepath.Join(home, constants.EnvFileName)
}
