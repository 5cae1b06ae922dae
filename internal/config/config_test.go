package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/hepatostage/internal/model"
)

// chdir moves into an empty directory so a developer's .env is not picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadUsesDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("MODEL_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.False(t, cfg.EnableDB)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, model.DefaultPath(), cfg.ModelPath)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	chdir(t)
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PATH", "/srv/models/stage.json")
	t.Setenv("PREDICTION_CACHE_SIZE", "0")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("PRELOAD_MODEL", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/models/stage.json", cfg.ModelPath)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.PreloadModel)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RATE_LIMIT_BURST=7\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("RATE_LIMIT_BURST") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateBurst)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nlog_level: debug\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	base := Config{
		Port: "8080", LogLevel: "info", LogFormat: "text",
		RateLimitRPS: 1, RateBurst: 1, MaxBodyBytes: 1024,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }},
		{"negative rate", func(c *Config) { c.RateLimitRPS = -1 }},
		{"zero burst", func(c *Config) { c.RateBurst = 0 }},
		{"zero body", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"empty port", func(c *Config) { c.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
