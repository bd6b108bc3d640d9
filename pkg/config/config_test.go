package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "relative stats url",
			mutate: func(c *Config) { c.Monitor.StatsURL = "/stats" },
		},
		{
			name:   "websocket stats url",
			mutate: func(c *Config) { c.Monitor.StatsURL = "ws://relay/stats" },
		},
		{
			name:   "stream id with whitespace",
			mutate: func(c *Config) { c.Monitor.StreamID = "live feed" },
		},
		{
			name: "redis connect attempts",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.ConnectAttempts = 0
			},
		},
		{
			name:   "poll interval must be > 0",
			mutate: func(c *Config) { c.Monitor.PollInterval = 0 },
		},
		{
			name:   "slot key must not be empty",
			mutate: func(c *Config) { c.Settings.SlotKey = "" },
		},
		{
			name:   "server address must not be empty",
			mutate: func(c *Config) { c.Server.Address = "" },
		},
		{
			name:   "pong timeout must exceed ping interval",
			mutate: func(c *Config) { c.WebSocket.PongTimeout = c.WebSocket.PingInterval },
		},
		{
			name:   "send buffer must be > 0",
			mutate: func(c *Config) { c.WebSocket.SendBuffer = 0 },
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
		},
		{
			name: "redis pool size",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.PoolSize = 0
			},
		},
		{
			name: "tracing sample rate",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 2
			},
		},
		{
			name: "rate limit rps",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.RequestsPerSecond = 0
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RateLimitingDisabled_AllowsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0
	cfg.RateLimiting.Burst = 0

	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Address, cfg.Server.Address)
	assert.Equal(t, time.Second, cfg.Monitor.PollInterval)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
monitor:
  stats_url: http://relay.local:8181/stats
  stream_id: publish/live/feed1
  poll_interval: 2s
settings:
  slot_key: studio
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://relay.local:8181/stats", cfg.Monitor.StatsURL)
	assert.Equal(t, "publish/live/feed1", cfg.Monitor.StreamID)
	assert.Equal(t, 2*time.Second, cfg.Monitor.PollInterval)
	assert.Equal(t, "studio", cfg.Settings.SlotKey)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Settings.Watch)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitor: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SRTMON_STATS_URL", "http://env.local/stats")
	t.Setenv("SRTMON_STREAM_ID", "env-stream")
	t.Setenv("SRTMON_LOG_LEVEL", "warn")
	t.Setenv("SRTMON_REDIS_ADDRESS", "redis:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://env.local/stats", cfg.Monitor.StatsURL)
	assert.Equal(t, "env-stream", cfg.Monitor.StreamID)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}
