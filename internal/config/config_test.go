package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vrorigins/internal/origins"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "vrorigins.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "actions.json"), cfg.Manifest)
	assert.Equal(t, filepath.Join("testdata", "rig.yaml"), cfg.RuntimeFixture)
	assert.Equal(t, filepath.Join("testdata", "history.db"), cfg.Database)
	assert.Equal(t, []string{"/actions/default"}, cfg.ActiveSets)
	assert.Equal(t, origins.PolicyFailCall, cfg.Policy())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "manifest: /abs/actions.json\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/abs/actions.json", cfg.Manifest)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "rig.yaml"), cfg.RuntimeFixture)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, origins.DefaultPolicy, cfg.Policy())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "manfest: a.json\n", "field manfest not found"},
		{"bad policy", "metadata_policy: retry\n", "metadata_policy"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"empty manifest", "manifest: \"\"\n", "manifest is required"},
		{"duplicate active set", "active_sets: [/actions/a, /actions/a]\n", "duplicate set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vrorigins.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
