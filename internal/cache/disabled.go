package cache

import (
	"context"

	"github.com/wellfolk/lifeline/internal/types"
)

// DisabledMemoryCache is a no-op memory tier.
type DisabledMemoryCache struct{}

func NewDisabledMemoryCache() *DisabledMemoryCache { return &DisabledMemoryCache{} }

func (c *DisabledMemoryCache) Name() string                  { return "memory-disabled" }
func (c *DisabledMemoryCache) IsAvailable() bool             { return false }
func (c *DisabledMemoryCache) Close() error                  { return nil }
func (c *DisabledMemoryCache) EntryCount() int               { return 0 }
func (c *DisabledMemoryCache) UsedBytes() int64              { return 0 }
func (c *DisabledMemoryCache) Stats() types.MemoryTierStats  { return types.MemoryTierStats{} }
func (c *DisabledMemoryCache) Clear(ctx context.Context) error { return nil }

func (c *DisabledMemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrCacheMiss
}

func (c *DisabledMemoryCache) Set(ctx context.Context, key string, e types.TierEntry) error {
	return nil
}

func (c *DisabledMemoryCache) Delete(ctx context.Context, key string) error { return nil }

func (c *DisabledMemoryCache) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	return 0, nil
}

// DisabledRedisCache is a no-op Redis tier used when the shared tier is
// unconfigured or disabled.
type DisabledRedisCache struct{}

func NewDisabledRedisCache() *DisabledRedisCache { return &DisabledRedisCache{} }

func (c *DisabledRedisCache) Name() string                    { return "redis-disabled" }
func (c *DisabledRedisCache) IsAvailable() bool               { return false }
func (c *DisabledRedisCache) Close() error                    { return nil }
func (c *DisabledRedisCache) Clear(ctx context.Context) error { return nil }

func (c *DisabledRedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrRedisUnavailable
}

func (c *DisabledRedisCache) Set(ctx context.Context, key string, e types.TierEntry) error {
	return nil
}

func (c *DisabledRedisCache) Delete(ctx context.Context, key string) error { return nil }

func (c *DisabledRedisCache) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	return 0, nil
}

// DisabledLocalCache is a no-op client-durable tier used outside client
// contexts.
type DisabledLocalCache struct{}

func NewDisabledLocalCache() *DisabledLocalCache { return &DisabledLocalCache{} }

func (c *DisabledLocalCache) Name() string                    { return "local-disabled" }
func (c *DisabledLocalCache) IsAvailable() bool               { return false }
func (c *DisabledLocalCache) Close() error                    { return nil }
func (c *DisabledLocalCache) Clear(ctx context.Context) error { return nil }

func (c *DisabledLocalCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, types.ErrCacheMiss
}

func (c *DisabledLocalCache) Set(ctx context.Context, key string, e types.TierEntry) error {
	return nil
}

func (c *DisabledLocalCache) Delete(ctx context.Context, key string) error { return nil }

var _ types.MemoryTier = (*DisabledMemoryCache)(nil)
var _ types.RedisTier = (*DisabledRedisCache)(nil)
var _ types.LocalTier = (*DisabledLocalCache)(nil)
