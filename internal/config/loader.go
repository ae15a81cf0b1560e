package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a JSON or YAML file, chosen by extension.
// If the file doesn't exist, returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a file and applies environment
// overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFELINE_MEMORY_ENABLED"); v != "" {
		cfg.Memory.Enabled = parseBool(v)
	}
	if v := os.Getenv("LIFELINE_MEMORY_MAX_ENTRIES"); v != "" {
		cfg.Memory.MaxEntries = parseInt(v, cfg.Memory.MaxEntries)
	}
	if v := os.Getenv("LIFELINE_MEMORY_SWEEP_INTERVAL"); v != "" {
		cfg.Memory.SweepInterval = parseDuration(v, cfg.Memory.SweepInterval)
	}
	if v := os.Getenv("LIFELINE_MEMORY_EVICTION"); v != "" {
		cfg.Memory.Eviction = v
	}

	if v := os.Getenv("LIFELINE_REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("LIFELINE_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("LIFELINE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = NewSecretString(v)
	}
	if v := os.Getenv("LIFELINE_REDIS_DB"); v != "" {
		cfg.Redis.DB = parseInt(v, cfg.Redis.DB)
	}
	if v := os.Getenv("LIFELINE_REDIS_KEY_PREFIX"); v != "" {
		cfg.Redis.KeyPrefix = v
	}
	if v := os.Getenv("LIFELINE_REDIS_DEFAULT_TTL"); v != "" {
		cfg.Redis.DefaultTTL = parseDuration(v, cfg.Redis.DefaultTTL)
	}
	if v := os.Getenv("LIFELINE_REDIS_COMPRESS_THRESHOLD"); v != "" {
		cfg.Redis.CompressThreshold = parseInt(v, cfg.Redis.CompressThreshold)
	}
	if v := os.Getenv("LIFELINE_REDIS_ENABLE_TLS"); v != "" {
		cfg.Redis.EnableTLS = parseBool(v)
	}

	if v := os.Getenv("LIFELINE_LOCAL_ENABLED"); v != "" {
		cfg.Local.Enabled = parseBool(v)
	}
	if v := os.Getenv("LIFELINE_LOCAL_DIR"); v != "" {
		cfg.Local.Dir = v
	}

	if v := os.Getenv("LIFELINE_BREAKER_FAILURE_THRESHOLD"); v != "" {
		cfg.Breaker.FailureThreshold = parseInt(v, cfg.Breaker.FailureThreshold)
	}
	if v := os.Getenv("LIFELINE_BREAKER_SUCCESS_THRESHOLD"); v != "" {
		cfg.Breaker.SuccessThreshold = parseInt(v, cfg.Breaker.SuccessThreshold)
	}
	if v := os.Getenv("LIFELINE_BREAKER_RESET_TIMEOUT"); v != "" {
		cfg.Breaker.ResetTimeout = parseDuration(v, cfg.Breaker.ResetTimeout)
	}
	if v := os.Getenv("LIFELINE_BREAKER_CALL_TIMEOUT"); v != "" {
		cfg.Breaker.CallTimeout = parseDuration(v, cfg.Breaker.CallTimeout)
	}

	if v := os.Getenv("LIFELINE_DEFAULTS_TTL"); v != "" {
		cfg.Defaults.TTL = parseDuration(v, cfg.Defaults.TTL)
	}
	if v := os.Getenv("LIFELINE_DEFAULTS_TIERS"); v != "" {
		cfg.Defaults.Tiers = v
	}

	if v := os.Getenv("LIFELINE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	if v := os.Getenv("DD_AGENT_HOST"); v != "" {
		cfg.Metrics.DataDog.AgentHost = v
		cfg.Metrics.DataDog.Enabled = true
	}
	if v := os.Getenv("DD_DOGSTATSD_PORT"); v != "" {
		cfg.Metrics.DataDog.Port = parseInt(v, cfg.Metrics.DataDog.Port)
	}
	if v := os.Getenv("DD_SERVICE"); v != "" {
		cfg.Metrics.DataDog.Prefix = v
	}
	if v := os.Getenv("DD_ENV"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "env:"+v)
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	// Bare integers are seconds.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}
