package types

import (
	"errors"
	"fmt"
)

var (
	ErrCacheMiss        = errors.New("lifeline: key not found")
	ErrRedisUnavailable = errors.New("lifeline: redis tier unavailable")
	ErrLocalUnavailable = errors.New("lifeline: local tier unavailable")
	ErrCircuitOpen      = errors.New("lifeline: circuit breaker open")
	ErrCallTimeout      = errors.New("lifeline: call timed out")
	ErrClosed           = errors.New("lifeline: manager closed")
	ErrSerialization    = errors.New("lifeline: serialization failed")
)

// CacheError wraps a tier-level failure with the operation and key that
// triggered it. Tier failures are logged inside the manager and never
// surfaced to callers except through Unwrap chains in debug paths.
type CacheError struct {
	Op   string
	Key  string
	Tier string
	Err  error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s on %s [%s]: %v", e.Op, e.Tier, e.Key, e.Err)
	}
	return fmt.Sprintf("cache %s on %s: %v", e.Op, e.Tier, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func NewCacheError(op, key, tier string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Key:  key,
		Tier: tier,
		Err:  err,
	}
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func IsRedisUnavailable(err error) bool {
	return errors.Is(err, ErrRedisUnavailable)
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

func IsCallTimeout(err error) bool {
	return errors.Is(err, ErrCallTimeout)
}
