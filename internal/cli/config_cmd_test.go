package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/faster/internal/config"
	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/errors"
)

func TestConfigShow(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, output, "queue:")
		assert.Contains(t, output, "poll_interval: 1s")
		assert.Contains(t, output, "model: sonnet")
		assert.Contains(t, output, "mode: smart")
	})

	t.Run("json uses the same keys", func(t *testing.T) {
		isolate(t)

		output, err := execute(t, "config", "show", "-o", "json")
		require.NoError(t, err)

		var got map[string]map[string]any
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		assert.Equal(t, "1s", got["queue"]["poll_interval"])
		assert.Equal(t, "claude", got["claude"]["cli_path"])
		assert.Equal(t, "Samantha", got["tts"]["voice"])
	})

	t.Run("explicit config file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "alt.yaml")
		require.NoError(t, os.WriteFile(path, []byte("claude:\n  model: opus\n"), 0o600))

		output, err := execute(t, "--config", path, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, output, "model: opus")
	})

	t.Run("invalid config fails", func(t *testing.T) {
		home := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(home, constants.GlobalConfigName),
			[]byte("intent:\n  confidence_threshold: 2\n"), 0o600))

		_, err := execute(t, "config", "show")
		require.ErrorIs(t, err, errors.ErrConfigInvalidIntent)
	})
}

func TestConfigPath(t *testing.T) {
	home := isolate(t)

	output, err := execute(t, "config", "path", "-o", "json")
	require.NoError(t, err)

	var entries []pathEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))

	byName := make(map[string]pathEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, filepath.Join(home, constants.GlobalConfigName), byName["config"].Path)
	assert.False(t, byName["config"].Exists)
	assert.Equal(t, filepath.Join(home, constants.DatabaseFileName), byName["database"].Path)
	assert.Equal(t, filepath.Join(home, constants.LogsDir, constants.CLILogFileName), byName["log"].Path)
}

func stubEditor(t *testing.T, fn func(path string) error) *[]string {
	t.Helper()

	var calls []string
	orig := runEditor
	runEditor = func(_ context.Context, editor, path string) error {
		calls = append(calls, editor+" "+path)
		return fn(path)
	}
	t.Cleanup(func() { runEditor = orig })
	return &calls
}

func TestConfigEdit(t *testing.T) {
	t.Run("creates then validates", func(t *testing.T) {
		home := isolate(t)
		t.Setenv("EDITOR", "nano -w")
		calls := stubEditor(t, func(path string) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return os.WriteFile(path, []byte(strings.Replace(string(data), "model: sonnet", "model: opus", 1)), 0o600)
		})

		output, err := execute(t, "config", "edit")
		require.NoError(t, err)

		path := filepath.Join(home, constants.GlobalConfigName)
		assert.Equal(t, []string{"nano " + path}, *calls)
		assert.Contains(t, output, "Created "+path)
		assert.Contains(t, output, "Config is valid")

		cfg, err := config.LoadWithOptions(t.Context(), config.LoadOptions{ConfigFile: path, SkipEnvFile: true})
		require.NoError(t, err)
		assert.Equal(t, "opus", cfg.Claude.Model)
	})

	t.Run("reports invalid edits", func(t *testing.T) {
		isolate(t)
		stubEditor(t, func(path string) error {
			return os.WriteFile(path, []byte("tts:\n  rate: 5\n"), 0o600)
		})

		output, err := execute(t, "config", "edit")
		require.ErrorIs(t, err, errors.ErrConfigInvalidSpeech)
		assert.Contains(t, output, "Config has errors")
	})

	t.Run("editor failure", func(t *testing.T) {
		isolate(t)
		stubEditor(t, func(string) error { return os.ErrPermission })

		_, err := execute(t, "config", "edit")
		require.ErrorIs(t, err, errors.ErrCommandFailed)
	})
}

func TestSetup(t *testing.T) {
	t.Run("writes config and database", func(t *testing.T) {
		home := isolate(t)

		output, err := execute(t, "setup")
		require.NoError(t, err)
		assert.Contains(t, output, "Created config file")
		assert.Contains(t, output, "Created task database")

		assert.FileExists(t, filepath.Join(home, constants.GlobalConfigName))
		assert.FileExists(t, filepath.Join(home, constants.DatabaseFileName))
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		isolate(t)

		_, err := execute(t, "setup")
		require.NoError(t, err)

		_, err = execute(t, "setup")
		require.ErrorIs(t, err, errors.ErrConfigExists)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))

		_, err = execute(t, "setup", "--force")
		require.NoError(t, err)
	})

	t.Run("json", func(t *testing.T) {
		home := isolate(t)

		output, err := execute(t, "setup", "-o", "json")
		require.NoError(t, err)

		var got setupResult
		require.NoError(t, json.Unmarshal([]byte(output), &got))
		assert.Equal(t, filepath.Join(home, constants.GlobalConfigName), got.Config)
		assert.Equal(t, filepath.Join(home, constants.DatabaseFileName), got.Database)
	})

	t.Run("warns about a missing voice", func(t *testing.T) {
		isolate(t)
		t.Setenv("NO_COLOR", "1")
		path := filepath.Join(t.TempDir(), "config.yaml")

		var out strings.Builder
		require.NoError(t, runSetup(t.Context(), &out, OutputText, path, false, &fakeVoices{names: []string{"Alex"}}))
		assert.Contains(t, out.String(), "⚠ voice Samantha is not installed")
	})

	t.Run("default voice installed", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "config.yaml")

		var out strings.Builder
		require.NoError(t, runSetup(t.Context(), &out, OutputJSON, path, false, installedVoices()))

		var got setupResult
		require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
		assert.Empty(t, got.VoiceWarning)
	})
}

type fakeDetector struct {
	result *config.ToolDetectionResult
	err    error
}

func (f *fakeDetector) Detect(_ context.Context) (*config.ToolDetectionResult, error) {
	return f.result, f.err
}

func detectedTools(claude config.ToolStatus) *config.ToolDetectionResult {
	return &config.ToolDetectionResult{
		Tools: []config.Tool{
			{Name: config.ToolClaude, Required: true, Purpose: "runs queued tasks", Status: claude, CurrentVersion: "1.2.0", Path: "/usr/local/bin/claude", InstallHint: "npm install -g @anthropic-ai/claude-code"},
			{Name: config.ToolOsascript, Purpose: "voice capture", Status: config.ToolStatusMissing, InstallHint: "needs macOS"},
		},
		HasMissingRequired: claude == config.ToolStatusMissing,
	}
}

type fakeVoices struct {
	names []string
	err   error
}

func (f *fakeVoices) Voices(_ context.Context) ([]string, error) {
	return f.names, f.err
}

func installedVoices() *fakeVoices {
	return &fakeVoices{names: []string{"Alex", "Samantha"}}
}

func TestDoctor(t *testing.T) {
	t.Run("healthy install", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		cfg := testConfig(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, config.Write(cfg, path, false))

		var out strings.Builder
		err := runDoctorWithDeps(t.Context(), &out, OutputText, &fakeDetector{result: detectedTools(config.ToolStatusInstalled)}, installedVoices(), cfg, path)
		require.NoError(t, err)

		assert.Contains(t, out.String(), "✓ claude (runs queued tasks)")
		assert.Contains(t, out.String(), "1.2.0")
		assert.Contains(t, out.String(), "⚠ osascript (voice capture) missing")
		assert.Contains(t, out.String(), "✓ config")
		assert.Contains(t, out.String(), "database "+cfg.Queue.Database+" not yet created")
		assert.Contains(t, out.String(), "✓ voice Samantha")
		assert.Contains(t, out.String(), "Daemon is not running")
	})

	t.Run("voice not installed warns", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		cfg := testConfig(t)
		cfg.TTS.Voice = "Zarvox"

		var out strings.Builder
		err := runDoctorWithDeps(t.Context(), &out, OutputText, &fakeDetector{result: detectedTools(config.ToolStatusInstalled)}, installedVoices(), cfg, "")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "⚠ voice Zarvox is not installed")
	})

	t.Run("voice check skipped without say", func(t *testing.T) {
		cfg := testConfig(t)

		var out strings.Builder
		voices := &fakeVoices{err: fmt.Errorf("%w: say", errors.ErrSpeechUnavailable)}
		err := runDoctorWithDeps(t.Context(), &out, OutputJSON, &fakeDetector{result: detectedTools(config.ToolStatusInstalled)}, voices, cfg, "")
		require.NoError(t, err)

		var got doctorReport
		require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
		require.Len(t, got.Checks, 3)
		assert.Equal(t, "voice", got.Checks[2].Name)
		assert.True(t, got.Checks[2].Warning)
		assert.Contains(t, got.Checks[2].Detail, "say is unavailable")
	})

	t.Run("missing claude fails", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		cfg := testConfig(t)

		var out strings.Builder
		err := runDoctorWithDeps(t.Context(), &out, OutputText, &fakeDetector{result: detectedTools(config.ToolStatusMissing)}, installedVoices(), cfg, "/nope/config.yaml")
		require.ErrorIs(t, err, errors.ErrMissingRequiredTools)
		assert.Contains(t, out.String(), "✗ claude (runs queued tasks) missing")
		assert.Contains(t, out.String(), "faster setup")
	})

	t.Run("json counts tasks", func(t *testing.T) {
		cfg := testConfig(t)
		store, err := openStore(t.Context(), cfg)
		require.NoError(t, err)
		_, err = store.Enqueue(t.Context(), "write docs", "")
		require.NoError(t, err)
		require.NoError(t, store.Close())

		var out strings.Builder
		err = runDoctorWithDeps(t.Context(), &out, OutputJSON, &fakeDetector{result: detectedTools(config.ToolStatusInstalled)}, installedVoices(), cfg, "/nope/config.yaml")
		require.NoError(t, err)

		var got doctorReport
		require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
		require.Len(t, got.Tools, 2)
		require.Len(t, got.Checks, 3)
		assert.True(t, got.Checks[1].OK)
		assert.Contains(t, got.Checks[1].Detail, "(1 tasks)")
	})

	t.Run("json with missing tool keeps exit code", func(t *testing.T) {
		cfg := testConfig(t)

		var out strings.Builder
		err := runDoctorWithDeps(t.Context(), &out, OutputJSON, &fakeDetector{result: detectedTools(config.ToolStatusMissing)}, installedVoices(), cfg, "")
		require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
		require.ErrorIs(t, err, errors.ErrMissingRequiredTools)
	})
}
