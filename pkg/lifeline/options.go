package lifeline

import (
	"time"

	"github.com/wellfolk/lifeline/internal/types"
)

type (
	Option         = types.Option
	ManagerOptions = types.ManagerOptions
)

// WithTTL sets the entry's time to live. Zero or negative means the
// entry is born expired.
func WithTTL(ttl time.Duration) Option {
	return func(o *CacheOptions) {
		o.SetTTL(ttl)
	}
}

// WithTags attaches invalidation tags to the entry.
func WithTags(tags ...string) Option {
	return func(o *CacheOptions) {
		o.Tags = tags
	}
}

// WithTiers restricts the operation to the given tiers.
func WithTiers(tiers Tiers) Option {
	return func(o *CacheOptions) {
		o.SetTiers(tiers)
	}
}

// WithMemoryOnly restricts the operation to the in-process tier.
func WithMemoryOnly() Option {
	return WithTiers(TierMemory)
}

// WithRedisOnly restricts the operation to the shared remote tier.
func WithRedisOnly() Option {
	return WithTiers(TierRedis)
}

// ManagerOption configures the cache manager or breaker at construction.
type ManagerOption func(*ManagerOptions)

func WithLogger(logger Logger) ManagerOption {
	return func(o *ManagerOptions) {
		o.Logger = logger
	}
}

func WithMetrics(metrics MetricsRecorder) ManagerOption {
	return func(o *ManagerOptions) {
		o.Metrics = metrics
	}
}

func WithSerializer(serializer Serializer) ManagerOption {
	return func(o *ManagerOptions) {
		o.Serializer = serializer
	}
}

func WithRedisAddress(addr string) ManagerOption {
	return func(o *ManagerOptions) {
		o.RedisAddress = addr
	}
}

func WithRedisPassword(password string) ManagerOption {
	return func(o *ManagerOptions) {
		o.RedisPassword = types.NewSecretString(password)
	}
}

func WithRedisDB(db int) ManagerOption {
	return func(o *ManagerOptions) {
		o.RedisDB = db
	}
}

func WithLocalDir(dir string) ManagerOption {
	return func(o *ManagerOptions) {
		o.LocalDir = dir
	}
}

func WithoutRedis() ManagerOption {
	return func(o *ManagerOptions) {
		o.DisableRedis = true
	}
}

func WithoutLocal() ManagerOption {
	return func(o *ManagerOptions) {
		o.DisableLocal = true
	}
}
