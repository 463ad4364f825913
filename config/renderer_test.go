package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRendererConfig_Defaults(t *testing.T) {
	t.Setenv("RENDER_CONFIG_FILE", "")

	cfg, err := GetRendererConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.FPS)
	assert.Equal(t, 720, cfg.Layout().ViewportHeight)
	assert.Equal(t, 1.0, cfg.MinDurationSeconds)
}

func TestGetRendererConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: 30\nheight: 1080\nfont_color: yellow\nmax_chars_per_line: 48\n"), 0o600))

	t.Setenv("RENDER_CONFIG_FILE", path)
	t.Setenv("RENDER_FPS", "24")

	cfg, err := GetRendererConfig()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.FPS)
	assert.Equal(t, 1080, cfg.Height)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, "yellow", cfg.FontColor)
	assert.Equal(t, 48, cfg.Layout().MaxCharsPerLine)
}

func TestGetRendererConfig_RejectsInvalidValues(t *testing.T) {
	t.Setenv("RENDER_CONFIG_FILE", "")
	t.Setenv("RENDER_FPS", "0")

	_, err := GetRendererConfig()
	assert.Error(t, err)

	t.Setenv("RENDER_FPS", "abc")
	_, err = GetRendererConfig()
	assert.Error(t, err)
}

func TestGetS3Config_DisabledWithoutBucket(t *testing.T) {
	t.Setenv("BUCKET_NAME", "")

	cfg, err := GetS3Config()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)

	t.Setenv("BUCKET_NAME", "media")
	t.Setenv("REGION", "")
	_, err = GetS3Config()
	assert.Error(t, err)
}

func TestGetOrchestratorConfig(t *testing.T) {
	t.Setenv("SYNTHESIS_CONCURRENCY", "3")
	t.Setenv("RENDER_CONCURRENCY", "")

	cfg, err := GetOrchestratorConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SynthesisConcurrency)
	assert.Equal(t, 2, cfg.RenderConcurrency)

	t.Setenv("RENDER_CONCURRENCY", "-1")
	_, err = GetOrchestratorConfig()
	assert.Error(t, err)
}
