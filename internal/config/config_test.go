package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 0.8, cfg.OpenAITemperature)
	assert.Equal(t, "https://api.elevenlabs.io", cfg.ElevenLabsBaseURL)
	assert.Equal(t, DefaultRender(), cfg.Render)
	assert.NotEmpty(t, cfg.TempDir, "temp dir falls back to the system default")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REQUEST_TIMEOUT", "15s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadMergesRenderProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 720\ncrf: 28\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 720, cfg.Render.Width)
	assert.Equal(t, 28, cfg.Render.CRF)
	assert.Equal(t, 1920, cfg.Render.Height, "keys absent from the file keep their defaults")
	assert.Equal(t, "fast", cfg.Render.Preset)
}

func TestLoadMissingProfileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRender(), cfg.Render)
}

func TestLoadRejectsMalformedProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
