package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Oracle.Provider)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Routing.EvaluatorTimeout)
	assert.True(t, cfg.Routing.LogInteractions)
	assert.Equal(t, 3, cfg.Webhook.MaxRetries)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrflow.yaml")
	content := `
store:
  type: sqlite
  sqlite:
    path: /tmp/hr.db
oracle:
  provider: gemini
  api_key: test-key
  timeout: 45s
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "/tmp/hr.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "gemini", cfg.Oracle.Provider)
	assert.Equal(t, 45*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	// untouched sections keep their defaults
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: file\n"), 0o644))

	t.Setenv("HRFLOW_STORE_TYPE", "redis")
	t.Setenv("HRFLOW_STORE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("HRFLOW_STORE_REDIS_DB", "3")
	t.Setenv("HRFLOW_ROUTING_LOG_INTERACTIONS", "false")
	t.Setenv("HRFLOW_ORACLE_TIMEOUT", "90s")
	t.Setenv("HRFLOW_LOG_OUTPUT_PATHS", "stdout, /var/log/hrflow.log")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, "redis.internal:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.False(t, cfg.Routing.LogInteractions)
	assert.Equal(t, 90*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, []string{"stdout", "/var/log/hrflow.log"}, cfg.Log.OutputPaths)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/hrflow.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Type)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [not a mapping"), 0o644))

	_, err := NewLoader().WithConfigPath(path).Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown store type",
			mutate:  func(c *Config) { c.Store.Type = "mongodb" },
			wantErr: "unknown store type",
		},
		{
			name: "redis without addr",
			mutate: func(c *Config) {
				c.Store.Type = "redis"
				c.Store.Redis.Addr = ""
			},
			wantErr: "redis store requires an address",
		},
		{
			name:    "unknown oracle provider",
			mutate:  func(c *Config) { c.Oracle.Provider = "palm" },
			wantErr: "unknown oracle provider",
		},
		{
			name:    "gemini without key",
			mutate:  func(c *Config) { c.Oracle.Provider = "gemini" },
			wantErr: "gemini oracle requires an api key",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Oracle.Temperature = 3.5 },
			wantErr: "temperature",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "unknown log level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})
}

func TestLoad_CustomValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error {
			if c.Webhook.URL == "" {
				return assert.AnError
			}
			return nil
		}).
		Load()
	assert.Error(t, err)
}

func TestBuildLogger(t *testing.T) {
	logger, err := LogConfig{Level: "debug", Format: "console"}.BuildLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = LogConfig{Level: "loud"}.BuildLogger()
	assert.Error(t, err)
}
