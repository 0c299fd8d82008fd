package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/errors"
)

func TestMarshal_UsesYAMLKeys(t *testing.T) {
	data, err := Marshal(DefaultConfigForHome("/h"))
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "poll_interval: 1s")
	assert.Contains(t, out, "confidence_threshold: 0.8")
	assert.Contains(t, out, "mode: smart")
	assert.Contains(t, out, "cli_path: claude")
	assert.NotContains(t, out, "extra_args")

	_, err = Marshal(nil)
	require.ErrorIs(t, err, errors.ErrConfigNil)
}

func TestWrite_RoundTripsThroughLoad(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfigForHome(t.TempDir())
	cfg.Claude.Model = "opus"
	cfg.Claude.ExtraArgs = []string{"--verbose"}
	cfg.Confirmation.Mode = ConfirmationAlways
	require.NoError(t, Write(cfg, path, false))

	loaded, err := LoadWithOptions(context.Background(), LoadOptions{ConfigFile: path, SkipEnvFile: true})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWrite_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o600))

	err := Write(DefaultConfigForHome("/h"), path, false)
	require.ErrorIs(t, err, errors.ErrConfigExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(data))

	require.NoError(t, Write(DefaultConfigForHome("/h"), path, true))
}
