package lifeline

import (
	"github.com/wellfolk/lifeline/internal/breaker"
	"github.com/wellfolk/lifeline/internal/types"
)

type (
	// CacheOptions holds the per-operation settings built from Options.
	CacheOptions = types.CacheOptions
	// CacheStats is a snapshot of manager-wide hit/miss counters.
	CacheStats = types.CacheStats
	// Tiers selects which cache tiers an operation touches.
	Tiers = types.Tiers
	// Serializer converts values to and from the cached byte form.
	Serializer = types.Serializer
	// MetricsRecorder receives per-operation measurements.
	MetricsRecorder = types.MetricsRecorder
	// MetricsSnapshot is a point-in-time view of tracked activity.
	MetricsSnapshot = types.MetricsSnapshot
	// HealthMetrics is the batch published on each reporting interval.
	HealthMetrics = types.HealthMetrics
	// Publisher sends metrics to a backend.
	Publisher = types.Publisher
	// Logger is the minimal structured logging surface callers can
	// supply.
	Logger = types.Logger
	// SecretString carries a credential that redacts itself when
	// printed.
	SecretString = types.SecretString
)

const (
	TierMemory = types.TierMemory
	TierRedis  = types.TierRedis
	TierLocal  = types.TierLocal
	TiersAll   = types.TiersAll
)

type (
	// Call describes one breaker-protected invocation.
	Call = breaker.Call
	// BreakerState is the position of one service's breaker.
	BreakerState = breaker.State
	// BreakerStatus is a point-in-time snapshot of one service's
	// breaker.
	BreakerStatus = breaker.Status
	// FallbackError reports that both the primary call and its fallback
	// failed.
	FallbackError = breaker.FallbackError
)

const (
	BreakerClosed   = breaker.StateClosed
	BreakerOpen     = breaker.StateOpen
	BreakerHalfOpen = breaker.StateHalfOpen
)
