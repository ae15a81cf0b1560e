package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, ForTesting().Validate())
	require.NoError(t, ForTestingWithRedis("localhost:6379").Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "zero max entries",
			mutate: func(c *Config) { c.Memory.MaxEntries = 0 },
			errMsg: "memory.maxEntries",
		},
		{
			name:   "unknown eviction strategy",
			mutate: func(c *Config) { c.Memory.Eviction = "random" },
			errMsg: "memory.eviction",
		},
		{
			name: "redis enabled without address",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Address = ""
			},
			errMsg: "redis.address",
		},
		{
			name: "local enabled without dir",
			mutate: func(c *Config) {
				c.Local.Enabled = true
				c.Local.Dir = ""
			},
			errMsg: "local.dir",
		},
		{
			name:   "zero failure threshold",
			mutate: func(c *Config) { c.Breaker.FailureThreshold = 0 },
			errMsg: "breaker.failureThreshold",
		},
		{
			name:   "zero reset timeout",
			mutate: func(c *Config) { c.Breaker.ResetTimeout = 0 },
			errMsg: "breaker.resetTimeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Memory.MaxEntries, cfg.Memory.MaxEntries)
	})

	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.True(t, cfg.Memory.Enabled)
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
memory:
  enabled: true
  maxEntries: 250
  eviction: lru
redis:
  enabled: true
  address: redis.internal:6380
  poolSize: 20
  password: hunter2
breaker:
  failureThreshold: 7
  successThreshold: 3
  resetTimeout: 30s
defaults:
  ttl: 2m
  tiers: memory+redis
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 250, cfg.Memory.MaxEntries)
		assert.Equal(t, "lru", cfg.Memory.Eviction)
		assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
		assert.Equal(t, "hunter2", cfg.Redis.Password.Value())
		assert.Equal(t, 7, cfg.Breaker.FailureThreshold)
		assert.Equal(t, 30*time.Second, cfg.Breaker.ResetTimeout)
		assert.Equal(t, 2*time.Minute, cfg.Defaults.TTL)
		assert.Equal(t, "memory+redis", cfg.Defaults.Tiers)
	})

	t.Run("json file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		content := `{"memory": {"enabled": true, "maxEntries": 42}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.Memory.MaxEntries)
	})

	t.Run("invalid file content fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid config fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "memory:\n  enabled: true\n  maxEntries: -1\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := Load(path)
		assert.ErrorContains(t, err, "memory.maxEntries")
	})
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("LIFELINE_REDIS_ENABLED", "true")
	t.Setenv("LIFELINE_REDIS_ADDRESS", "redis.env:6379")
	t.Setenv("LIFELINE_REDIS_PASSWORD", "env-secret")
	t.Setenv("LIFELINE_MEMORY_MAX_ENTRIES", "77")
	t.Setenv("LIFELINE_BREAKER_RESET_TIMEOUT", "45s")
	t.Setenv("LIFELINE_DEFAULTS_TTL", "90")
	t.Setenv("DD_AGENT_HOST", "dd.internal")
	t.Setenv("DD_ENV", "staging")

	cfg, err := LoadWithEnv("")
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis.env:6379", cfg.Redis.Address)
	assert.Equal(t, "env-secret", cfg.Redis.Password.Value())
	assert.Equal(t, 77, cfg.Memory.MaxEntries)
	assert.Equal(t, 45*time.Second, cfg.Breaker.ResetTimeout)
	// Bare integers are seconds.
	assert.Equal(t, 90*time.Second, cfg.Defaults.TTL)
	assert.True(t, cfg.Metrics.DataDog.Enabled)
	assert.Equal(t, "dd.internal", cfg.Metrics.DataDog.AgentHost)
	assert.Contains(t, cfg.Metrics.DataDog.Tags, "env:staging")
}

func TestSecretStringRedaction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redis.Password = NewSecretString("super-secret")

	out, err := json.Marshal(cfg.Redis)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "super-secret")
	assert.Equal(t, "[REDACTED]", cfg.Redis.Password.String())
	assert.Equal(t, "super-secret", cfg.Redis.Password.Value())
}
