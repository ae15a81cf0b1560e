package lifeline

import (
	"context"
	"time"

	"github.com/wellfolk/lifeline/internal/breaker"
)

// CacheManager is the multi-tier cache surface.
type CacheManager interface {
	Get(ctx context.Context, key string, dest any, opts ...Option) error
	Set(ctx context.Context, key string, value any, opts ...Option) error
	GetOrSet(ctx context.Context, key string, dest any, loader func(ctx context.Context) (any, error), opts ...Option) error
	Delete(ctx context.Context, key string, opts ...Option) error
	Clear(ctx context.Context) error
	InvalidateByTags(ctx context.Context, tags []string) (int, error)
	WarmUp(ctx context.Context, loaders map[string]func(ctx context.Context) (any, error), opts ...Option) (int, error)
	Stats() CacheStats
	IsRedisAvailable() bool
	Close() error
}

// CircuitBreaker is the per-service breaker surface.
type CircuitBreaker interface {
	Execute(ctx context.Context, call Call) (any, error)
	State(service string) BreakerState
	Status(service string) BreakerStatus
	HealthScores() map[string]float64
	Reset(service string)
	ForceOpen(service string, d time.Duration)
	SetOnStateChange(fn breaker.StateChangeFunc)
}
