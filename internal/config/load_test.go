package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/errors"
)

// isolate points FASTER_HOME at a temp dir, runs from an empty working
// directory and clears FASTER_* variables the tests set.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("FASTER_HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{"FASTER_CLAUDE_MODEL", "FASTER_QUEUE_POLL_INTERVAL", "FASTER_TTS_VOICE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "knowledge.db"), cfg.Queue.Database)
	assert.Equal(t, time.Second, cfg.Queue.PollInterval)
	assert.Equal(t, "sonnet", cfg.Claude.Model)
	assert.Equal(t, ConfirmationSmart, cfg.Confirmation.Mode)
	assert.True(t, cfg.TTS.Enabled)
}

func TestLoad_MergesGlobalAndProjectConfigs(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.yaml"), `
claude:
  model: opus
tts:
  voice: Alex
  rate: 180
`)
	writeFile(t, filepath.Join(".faster", "config.yaml"), `
tts:
  rate: 240
queue:
  poll_interval: 250ms
`)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "opus", cfg.Claude.Model)
	assert.Equal(t, "Alex", cfg.TTS.Voice)
	assert.Equal(t, 240, cfg.TTS.Rate)
	assert.Equal(t, 250*time.Millisecond, cfg.Queue.PollInterval)
}

func TestLoad_EnvVarOverridesConfigFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.yaml"), "claude:\n  model: opus\n")
	t.Setenv("FASTER_CLAUDE_MODEL", "haiku")
	t.Setenv("FASTER_QUEUE_POLL_INTERVAL", "2s")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "haiku", cfg.Claude.Model)
	assert.Equal(t, 2*time.Second, cfg.Queue.PollInterval)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".env"), "FASTER_CLAUDE_MODEL=opus\nFASTER_TTS_VOICE=Daniel\n")
	t.Setenv("FASTER_TTS_VOICE", "Karen")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "opus", cfg.Claude.Model)
	assert.Equal(t, "Karen", cfg.TTS.Voice)
}

func TestLoadWithOptions_OverridesWin(t *testing.T) {
	home := isolate(t)
	t.Setenv("FASTER_CLAUDE_MODEL", "haiku")

	cfg, err := LoadWithOptions(context.Background(), LoadOptions{
		Home:      home,
		Overrides: map[string]any{"claude.model": "opus", "queue.database": "/tmp/q.db"},
	})
	require.NoError(t, err)

	assert.Equal(t, "opus", cfg.Claude.Model)
	assert.Equal(t, "/tmp/q.db", cfg.Queue.Database)
}

func TestLoadWithOptions_ExplicitConfigFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.yaml"), "claude:\n  model: opus\n")
	explicit := filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, explicit, "tts:\n  enabled: false\n")

	cfg, err := LoadWithOptions(context.Background(), LoadOptions{ConfigFile: explicit})
	require.NoError(t, err)

	assert.False(t, cfg.TTS.Enabled)
	assert.Equal(t, "sonnet", cfg.Claude.Model, "global config is not read with --config")
}

func TestLoadWithOptions_MissingExplicitConfigFile(t *testing.T) {
	isolate(t)

	_, err := LoadWithOptions(context.Background(), LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	require.ErrorIs(t, err, errors.ErrConfigNotFound)
}

func TestLoad_ExpandsHomeInPaths(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.yaml"), "queue:\n  database: ~/queue.db\n")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	userHome, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userHome, "queue.db"), cfg.Queue.Database)
}

func TestLoadFromPaths_ValidationFailure(t *testing.T) {
	isolate(t)
	global := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, global, "confirmation:\n  mode: sometimes\n")

	_, err := LoadFromPaths(context.Background(), "", global)
	require.ErrorIs(t, err, errors.ErrConfigInvalidConfirmation)
}

func TestLoadFromPaths_InvalidConfigFile(t *testing.T) {
	isolate(t)
	global := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, global, "queue: [not: a: map")

	_, err := LoadFromPaths(context.Background(), "", global)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read global config")
}

func TestLoadFromPaths_MissingFilesUseDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfg, err := LoadFromPaths(context.Background(),
		filepath.Join(dir, "project.yaml"), filepath.Join(dir, "global.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.TTS.Rate)
}
