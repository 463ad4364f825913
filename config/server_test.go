package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServerConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MOCK_BACKENDS", "")
	t.Setenv("GENERATE_RATE_LIMIT", "")

	cfg, err := GetServerConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/videos", cfg.ArtifactBasePath)
	assert.Equal(t, "30-M", cfg.GenerateRateLimit)
	assert.False(t, cfg.MockBackends)
}

func TestGetServerConfig_RejectsBadBool(t *testing.T) {
	t.Setenv("MOCK_BACKENDS", "maybe")

	_, err := GetServerConfig()

	assert.Error(t, err)
}

func TestGetLoggerConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_FILE", "/var/log/pipeline.log")
	t.Setenv("LOG_FILE_MAX_BACKUPS", "2")

	cfg, err := GetLoggerConfig()
	require.NoError(t, err)

	assert.Equal(t, &LoggerConfig{
		Level:          "debug",
		Console:        true,
		File:           "/var/log/pipeline.log",
		FileMaxSizeMB:  100,
		FileMaxBackups: 2,
		FileMaxAgeDays: 14,
	}, cfg)
}

func TestGetLoggerConfig_RejectsBadNumber(t *testing.T) {
	t.Setenv("LOG_FILE_MAX_SIZE_MB", "big")

	_, err := GetLoggerConfig()

	assert.Error(t, err)
}
