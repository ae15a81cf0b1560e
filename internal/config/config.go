// Package config provides configuration management for lifeline.
package config

import (
	"fmt"
	"time"

	"github.com/wellfolk/lifeline/internal/types"
)

// SecretString is a string type that redacts its value when marshaled.
type SecretString = types.SecretString

// NewSecretString creates a new SecretString with the provided value.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}

// Config contains all configuration for the lifeline cache manager and
// circuit breaker.
type Config struct {
	Memory   MemoryConfig   `json:"memory" yaml:"memory"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Local    LocalConfig    `json:"local" yaml:"local"`
	Breaker  BreakerConfig  `json:"breaker" yaml:"breaker"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
	Defaults DefaultsConfig `json:"defaults" yaml:"defaults"`
}

// MemoryConfig contains configuration for the process-local tier.
type MemoryConfig struct {
	// MaxEntries bounds the tier; at capacity the entry chosen by
	// Eviction is removed before the new write.
	MaxEntries int `json:"maxEntries" yaml:"maxEntries"`

	// SweepInterval is how often the janitor removes expired entries
	// that are never re-read.
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`

	// Eviction selects the eviction strategy: "oldest-write" (default)
	// evicts by write timestamp, "lru" by last read.
	Eviction string `json:"eviction" yaml:"eviction"`

	Enabled bool `json:"enabled" yaml:"enabled"`
}

// RedisConfig contains configuration for the shared remote tier.
type RedisConfig struct {
	DefaultTTL          time.Duration `json:"defaultTTL" yaml:"defaultTTL"`
	DialTimeout         time.Duration `json:"dialTimeout" yaml:"dialTimeout"`
	ReadTimeout         time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout        time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	OpTimeout           time.Duration `json:"opTimeout" yaml:"opTimeout"`
	HealthCheckInterval time.Duration `json:"healthCheckInterval" yaml:"healthCheckInterval"`
	Password            SecretString  `json:"password" yaml:"password"`
	Address             string        `json:"address" yaml:"address"`
	KeyPrefix           string        `json:"keyPrefix" yaml:"keyPrefix"`
	DB                  int           `json:"db" yaml:"db"`
	PoolSize            int           `json:"poolSize" yaml:"poolSize"`
	MinIdleConns        int           `json:"minIdleConns" yaml:"minIdleConns"`
	// CompressThreshold is the payload size in bytes above which values
	// are gzip-framed before the network write. Zero disables compression.
	CompressThreshold int  `json:"compressThreshold" yaml:"compressThreshold"`
	Enabled           bool `json:"enabled" yaml:"enabled"`
	EnableTLS         bool `json:"enableTLS" yaml:"enableTLS"`
	TLSSkipVerify     bool `json:"tlsSkipVerify" yaml:"tlsSkipVerify"`
}

// LocalConfig contains configuration for the client-durable tier.
type LocalConfig struct {
	// Dir is the directory holding one envelope file per key. Empty
	// disables the tier.
	Dir       string `json:"dir" yaml:"dir"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
	Enabled   bool   `json:"enabled" yaml:"enabled"`
}

// BreakerConfig contains configuration for the circuit breaker.
type BreakerConfig struct {
	FailureThreshold int           `json:"failureThreshold" yaml:"failureThreshold"`
	SuccessThreshold int           `json:"successThreshold" yaml:"successThreshold"`
	ResetTimeout     time.Duration `json:"resetTimeout" yaml:"resetTimeout"`
	CallTimeout      time.Duration `json:"callTimeout" yaml:"callTimeout"`
	MonitoringWindow time.Duration `json:"monitoringWindow" yaml:"monitoringWindow"`
}

// DefaultsConfig contains default values for cache operations.
type DefaultsConfig struct {
	TTL   time.Duration `json:"ttl" yaml:"ttl"`
	Tiers string        `json:"tiers" yaml:"tiers"`
}

// MetricsConfig contains configuration for metrics publishing.
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval" yaml:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog" yaml:"datadog"`
	Enabled         bool          `json:"enabled" yaml:"enabled"`
}

// DataDogConfig contains configuration for DataDog statsd publishing.
type DataDogConfig struct {
	Tags      []string `json:"tags" yaml:"tags"`
	AgentHost string   `json:"agentHost" yaml:"agentHost"`
	Prefix    string   `json:"prefix" yaml:"prefix"`
	Port      int      `json:"port" yaml:"port"`
	Enabled   bool     `json:"enabled" yaml:"enabled"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Memory.Enabled {
		if c.Memory.MaxEntries <= 0 {
			return fmt.Errorf("memory.maxEntries must be positive")
		}
		switch c.Memory.Eviction {
		case "", "oldest-write", "lru":
		default:
			return fmt.Errorf("memory.eviction must be oldest-write or lru, got %q", c.Memory.Eviction)
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when redis is enabled")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.poolSize must be positive")
		}
	}

	if c.Local.Enabled && c.Local.Dir == "" {
		return fmt.Errorf("local.dir is required when the local tier is enabled")
	}

	if c.Breaker.FailureThreshold <= 0 {
		return fmt.Errorf("breaker.failureThreshold must be positive")
	}
	if c.Breaker.SuccessThreshold <= 0 {
		return fmt.Errorf("breaker.successThreshold must be positive")
	}
	if c.Breaker.ResetTimeout <= 0 {
		return fmt.Errorf("breaker.resetTimeout must be positive")
	}

	return nil
}
