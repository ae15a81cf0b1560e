package lifeline

import (
	"log/slog"

	"github.com/wellfolk/lifeline/internal/breaker"
	"github.com/wellfolk/lifeline/internal/cache"
	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// New creates a cache manager with the default configuration.
func New(opts ...ManagerOption) (CacheManager, error) {
	return NewFromConfig(config.DefaultConfig(), opts...)
}

// NewFromConfig creates a cache manager from configuration.
func NewFromConfig(cfg *config.Config, opts ...ManagerOption) (CacheManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	managerOpts := &ManagerOptions{}
	for _, opt := range opts {
		opt(managerOpts)
	}
	return cache.NewManager(cfg, managerOpts)
}

// NewFromFile creates a cache manager from a YAML or JSON config file,
// with environment variable overrides applied.
func NewFromFile(path string, opts ...ManagerOption) (CacheManager, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewMemoryOnly creates a cache manager using only the in-process tier.
func NewMemoryOnly(opts ...ManagerOption) (CacheManager, error) {
	cfg := config.DefaultConfig()
	cfg.Redis.Enabled = false
	cfg.Local.Enabled = false
	cfg.Defaults.Tiers = "memory"
	return NewFromConfig(cfg, opts...)
}

// NewBreaker creates a circuit breaker registry from configuration.
func NewBreaker(cfg config.BreakerConfig, opts ...ManagerOption) CircuitBreaker {
	managerOpts := &ManagerOptions{}
	for _, opt := range opts {
		opt(managerOpts)
	}

	var logger *slog.Logger
	if managerOpts.Logger != nil {
		logger = types.NewSlogLogger(managerOpts.Logger)
	}
	return breaker.New(cfg, logger, managerOpts.Metrics)
}

// Config returns a default configuration to modify before creating a
// manager.
func Config() *config.Config {
	return config.DefaultConfig()
}

// TestConfig returns a configuration suitable for unit tests.
func TestConfig() *config.Config {
	return config.ForTesting()
}
