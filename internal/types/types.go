// Package types provides shared types for the lifeline resilience library.
// This package breaks import cycles between pkg/lifeline and internal/cache.
package types

import "time"

// Tiers is a bitmask selecting which cache tiers an operation touches.
type Tiers uint8

const (
	TierMemory Tiers = 1 << iota
	TierRedis
	TierLocal

	TiersAll = TierMemory | TierRedis | TierLocal
)

func (t Tiers) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierRedis:
		return "redis"
	case TierLocal:
		return "local"
	case TierMemory | TierRedis:
		return "memory+redis"
	case TiersAll:
		return "all"
	default:
		return "mixed"
	}
}

func (t Tiers) IncludesMemory() bool { return t&TierMemory != 0 }
func (t Tiers) IncludesRedis() bool  { return t&TierRedis != 0 }
func (t Tiers) IncludesLocal() bool  { return t&TierLocal != 0 }

// CacheOptions contains per-operation settings.
type CacheOptions struct {
	// TTL is the time-to-live relative to write time. Zero or negative
	// means the entry is already expired on its next check.
	TTL time.Duration

	// Tags label the entry for bulk invalidation. Order is irrelevant.
	Tags []string

	// Tiers selects the tiers the operation touches.
	Tiers Tiers

	ttlSet   bool
	tiersSet bool
}

// SetTTL records an explicit TTL. Explicit values win over the manager's
// configured default, even when they coincide with the built-in one.
func (o *CacheOptions) SetTTL(ttl time.Duration) {
	o.TTL = ttl
	o.ttlSet = true
}

// HasTTL reports whether the TTL was set explicitly.
func (o *CacheOptions) HasTTL() bool { return o.ttlSet }

// SetTiers records an explicit tier selection.
func (o *CacheOptions) SetTiers(t Tiers) {
	o.Tiers = t
	o.tiersSet = true
}

// HasTiers reports whether the tier selection was set explicitly.
func (o *CacheOptions) HasTiers() bool { return o.tiersSet }

func DefaultOptions() *CacheOptions {
	return &CacheOptions{
		TTL:   5 * time.Minute,
		Tiers: TiersAll,
	}
}

// TierEntry is the unit a tier stores: serialized payload plus the
// metadata the tier needs for expiry and invalidation. Each tier is
// authoritative for its own copy.
type TierEntry struct {
	Data []byte
	TTL  time.Duration
	Tags []string
}

// CacheStats is a snapshot of manager-wide counters. HitRate is derived;
// Size and MemoryUsage describe the memory tier only.
type CacheStats struct {
	Hits        int64
	Misses      int64
	HitRate     float64
	Size        int
	MemoryUsage int64
}

// MemoryTierStats contains counters owned by the memory tier.
type MemoryTierStats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Deletes     int64
	Evictions   int64
	Expirations int64
}
