package config

import "time"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			Enabled:       true,
			MaxEntries:    1000,
			SweepInterval: time.Minute,
			Eviction:      "oldest-write",
		},
		Redis: RedisConfig{
			Enabled:             false,
			Address:             "localhost:6379",
			Password:            SecretString{},
			DB:                  0,
			KeyPrefix:           "lifeline:",
			DefaultTTL:          15 * time.Minute,
			PoolSize:            50,
			MinIdleConns:        5,
			DialTimeout:         5 * time.Second,
			ReadTimeout:         3 * time.Second,
			WriteTimeout:        3 * time.Second,
			OpTimeout:           3 * time.Second,
			CompressThreshold:   10 * 1024,
			HealthCheckInterval: 5 * time.Second,
		},
		Local: LocalConfig{
			Enabled:   false,
			KeyPrefix: "lifeline:",
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			ResetTimeout:     time.Minute,
			CallTimeout:      10 * time.Second,
			MonitoringWindow: 5 * time.Minute,
		},
		Defaults: DefaultsConfig{
			TTL:   5 * time.Minute,
			Tiers: "all",
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			PublishInterval: 10 * time.Second,
			DataDog: DataDogConfig{
				Enabled:   false,
				AgentHost: "127.0.0.1",
				Port:      8125,
				Prefix:    "lifeline",
				Tags:      []string{},
			},
		},
	}
}

// ForTesting returns a minimal configuration suitable for unit tests.
func ForTesting() *Config {
	return &Config{
		Memory: MemoryConfig{
			Enabled:       true,
			MaxEntries:    100,
			SweepInterval: 50 * time.Millisecond,
			Eviction:      "oldest-write",
		},
		Redis: RedisConfig{
			Enabled:           false,
			Address:           "localhost:6379",
			KeyPrefix:         "test:",
			DefaultTTL:        time.Minute,
			PoolSize:          10,
			MinIdleConns:      1,
			DialTimeout:       time.Second,
			ReadTimeout:       time.Second,
			WriteTimeout:      time.Second,
			OpTimeout:         time.Second,
			CompressThreshold: 1024,
			// No background ping in unit tests.
			HealthCheckInterval: 0,
		},
		Local: LocalConfig{
			Enabled:   false,
			KeyPrefix: "test:",
		},
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			SuccessThreshold: 1,
			ResetTimeout:     time.Second,
			CallTimeout:      time.Second,
			MonitoringWindow: time.Minute,
		},
		Defaults: DefaultsConfig{
			TTL:   time.Minute,
			Tiers: "memory",
		},
		Metrics: MetricsConfig{
			Enabled:         false,
			PublishInterval: time.Second,
		},
	}
}

// ForTestingWithRedis returns a test config with the Redis tier enabled.
func ForTestingWithRedis(addr string) *Config {
	cfg := ForTesting()
	cfg.Redis.Enabled = true
	cfg.Redis.Address = addr
	cfg.Defaults.Tiers = "all"
	return cfg
}
