package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Empty(t, cfg.TablesPath)
	assert.True(t, cfg.EnableLocalAuth)
	assert.Equal(t, 4, cfg.SweepConcurrency)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3010"}, cfg.CORSOrigins())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("TABLES_PATH", "/etc/n2s/tables.yaml")
	t.Setenv("CORS_ORIGINS_ONLINE", "https://a.example.com, https://b.example.com,")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SWEEP_CONCURRENCY", "0")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, "/etc/n2s/tables.yaml", cfg.TablesPath)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 1, cfg.SweepConcurrency)
	assert.False(t, cfg.MetricsEnabled)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("mode", func(t *testing.T) {
		t.Setenv("MODE", "hybrid")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "MODE")
	})
	t.Run("int", func(t *testing.T) {
		t.Setenv("SWEEP_CONCURRENCY", "many")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "parse env")
	})
}
