package lifeline

import (
	"github.com/wellfolk/lifeline/internal/types"
)

// CacheError represents a cache tier operation error.
type CacheError = types.CacheError

var (
	// ErrCacheMiss indicates that a requested key was not found in any
	// probed tier.
	ErrCacheMiss = types.ErrCacheMiss
	// ErrRedisUnavailable indicates that the shared remote tier is not
	// reachable.
	ErrRedisUnavailable = types.ErrRedisUnavailable
	// ErrLocalUnavailable indicates that the client-durable tier is not
	// usable.
	ErrLocalUnavailable = types.ErrLocalUnavailable
	// ErrCircuitOpen indicates that the circuit breaker rejected the
	// call without attempting it.
	ErrCircuitOpen = types.ErrCircuitOpen
	// ErrCallTimeout indicates that a breaker-protected call exceeded
	// its timeout.
	ErrCallTimeout = types.ErrCallTimeout
	// ErrClosed indicates that the cache manager has been closed.
	ErrClosed = types.ErrClosed
	// ErrSerialization indicates that a value could not be serialized.
	ErrSerialization = types.ErrSerialization
)

// NewCacheError creates a cache error with operation, key, tier, and
// underlying error.
func NewCacheError(op, key, tier string, err error) *CacheError {
	return types.NewCacheError(op, key, tier, err)
}

// IsCacheMiss returns true if the error is a cache miss.
func IsCacheMiss(err error) bool {
	return types.IsCacheMiss(err)
}

// IsRedisUnavailable returns true if the error indicates the remote tier
// is unavailable.
func IsRedisUnavailable(err error) bool {
	return types.IsRedisUnavailable(err)
}

// IsCircuitOpen returns true if the error indicates an open breaker.
func IsCircuitOpen(err error) bool {
	return types.IsCircuitOpen(err)
}

// IsCallTimeout returns true if the error is a breaker call timeout.
func IsCallTimeout(err error) bool {
	return types.IsCallTimeout(err)
}
