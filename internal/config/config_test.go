package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TETRIS_PORT", "9090")
	t.Setenv("TETRIS_LOG_LEVEL", "debug")
	t.Setenv("TETRIS_SESSION_DURATION", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "1h0m0s", cfg.SessionDuration.String())
}

func TestLoadRedisRequiresURL(t *testing.T) {
	t.Setenv("TETRIS_STORAGE_TYPE", "redis")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("TETRIS_REDIS_URL", "redis://localhost:6379")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}
