package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// Manager coordinates the memory, Redis, and local tiers behind one
// logical cache. Reads probe tiers fastest-first; writes fan out to every
// enabled tier, with only the memory write guaranteed.
type Manager struct {
	memory     types.MemoryTier
	redis      types.RedisTier
	local      types.LocalTier
	serializer types.Serializer
	config     *config.Config
	metrics    types.MetricsRecorder
	logger     *slog.Logger
	sfGroup    singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	closed atomic.Bool
}

// NewManager creates a new cache manager with the given configuration and
// options.
func NewManager(cfg *config.Config, opts *types.ManagerOptions) (*Manager, error) {
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = types.NewSlogLogger(opts.Logger)
	}
	logger = logger.With("component", "cache-manager")

	m := &Manager{
		config:     cfg,
		logger:     logger,
		serializer: NewJSONSerializer(),
	}

	if opts != nil {
		if opts.Serializer != nil {
			m.serializer = opts.Serializer
		}
		if opts.Metrics != nil {
			m.metrics = opts.Metrics
		}
		if opts.RedisAddress != "" {
			cfg.Redis.Address = opts.RedisAddress
			cfg.Redis.Enabled = true
		}
		if !opts.RedisPassword.IsEmpty() {
			cfg.Redis.Password = opts.RedisPassword
		}
		if opts.RedisDB != 0 {
			cfg.Redis.DB = opts.RedisDB
		}
		if opts.LocalDir != "" {
			cfg.Local.Dir = opts.LocalDir
			cfg.Local.Enabled = true
		}
		if opts.DisableRedis {
			cfg.Redis.Enabled = false
		}
		if opts.DisableLocal {
			cfg.Local.Enabled = false
		}
	}

	if cfg.Memory.Enabled {
		m.memory = NewMemoryCache(cfg.Memory, logger)
	} else {
		m.memory = NewDisabledMemoryCache()
	}

	if cfg.Redis.Enabled {
		m.redis = NewRedisCache(&cfg.Redis, logger)
	} else {
		m.redis = NewDisabledRedisCache()
	}

	if cfg.Local.Enabled {
		localCache, err := NewLocalCache(cfg.Local, logger)
		if err != nil {
			logger.Warn("Failed to open local tier, continuing without it", "error", err)
			m.local = NewDisabledLocalCache()
		} else {
			m.local = localCache
		}
	} else {
		m.local = NewDisabledLocalCache()
	}

	return m, nil
}

// Get retrieves a value, probing memory, then Redis, then the local tier.
// A Redis hit is promoted into memory so the next lookup stays local.
// A miss across all tiers returns ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key string, dest any, opts ...types.Option) error {
	if m.closed.Load() {
		return types.ErrClosed
	}

	start := time.Now()
	options := m.applyDefaults(opts...)

	data, tier, err := m.probeTiers(ctx, key, options)
	latency := time.Since(start)

	if err != nil {
		if types.IsCacheMiss(err) {
			m.misses.Add(1)
			if m.metrics != nil {
				m.metrics.RecordMiss(key, latency)
			}
		}
		return err
	}

	if err := m.serializer.Unmarshal(data, dest); err != nil {
		m.logger.Debug("Deserialization failed", "key", key, "error", err)
		return err
	}

	m.hits.Add(1)
	if m.metrics != nil {
		m.metrics.RecordHit(tier, key, latency)
	}
	return nil
}

func (m *Manager) probeTiers(ctx context.Context, key string, options *types.CacheOptions) ([]byte, string, error) {
	if options.Tiers.IncludesMemory() {
		data, err := m.memory.Get(ctx, key)
		if err == nil {
			return data, "memory", nil
		}
		if !types.IsCacheMiss(err) && !errors.Is(err, types.ErrClosed) {
			m.logger.Debug("Memory tier error", "key", key, "error", err)
		}
	}

	if options.Tiers.IncludesRedis() && m.redis.IsAvailable() {
		data, err := m.redis.Get(ctx, key)
		if err == nil {
			m.promote(ctx, key, data, options)
			return data, "redis", nil
		}
		if !types.IsCacheMiss(err) {
			m.logger.Debug("Redis tier error, treating as miss", "key", key, "error", err)
		}
	}

	if options.Tiers.IncludesLocal() && m.local.IsAvailable() {
		data, err := m.local.Get(ctx, key)
		if err == nil {
			return data, "local", nil
		}
		if !types.IsCacheMiss(err) {
			m.logger.Debug("Local tier error, treating as miss", "key", key, "error", err)
		}
	}

	return nil, "", types.ErrCacheMiss
}

// promote writes a remote hit into the memory tier.
func (m *Manager) promote(ctx context.Context, key string, data []byte, options *types.CacheOptions) {
	entry := types.TierEntry{Data: data, TTL: options.TTL, Tags: options.Tags}
	if err := m.memory.Set(ctx, key, entry); err != nil {
		m.logger.Debug("Failed to promote remote hit into memory", "key", key, "error", err)
	}
}

// Set writes to every enabled tier. Redis and local failures are logged
// and swallowed; the memory write is the only guaranteed one.
func (m *Manager) Set(ctx context.Context, key string, value any, opts ...types.Option) error {
	if m.closed.Load() {
		return types.ErrClosed
	}

	start := time.Now()
	options := m.applyDefaults(opts...)

	data, err := m.serializer.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrSerialization, err)
	}

	entry := types.TierEntry{Data: data, TTL: options.TTL, Tags: options.Tags}

	if options.Tiers.IncludesMemory() {
		if err := m.memory.Set(ctx, key, entry); err != nil && !errors.Is(err, types.ErrClosed) {
			m.logger.Warn("Memory SET failed", "key", key, "error", err)
		}
	}

	if options.Tiers.IncludesRedis() {
		if err := m.redis.Set(ctx, key, entry); err != nil && !types.IsRedisUnavailable(err) {
			m.logger.Warn("Redis SET failed, continuing with remaining tiers", "key", key, "error", err)
			if m.metrics != nil {
				m.metrics.RecordError("redis", "Set", err)
			}
		}
	}

	if options.Tiers.IncludesLocal() && m.local.IsAvailable() {
		if err := m.local.Set(ctx, key, entry); err != nil {
			m.logger.Warn("Local SET failed", "key", key, "error", err)
			if m.metrics != nil {
				m.metrics.RecordError("local", "Set", err)
			}
		}
	}

	if m.metrics != nil {
		m.metrics.RecordSet(options.Tiers.String(), key, len(data), time.Since(start))
	}
	return nil
}

// Delete removes the key from every enabled tier, swallowing tier
// failures.
func (m *Manager) Delete(ctx context.Context, key string, opts ...types.Option) error {
	if m.closed.Load() {
		return types.ErrClosed
	}

	start := time.Now()
	options := m.applyDefaults(opts...)

	if options.Tiers.IncludesMemory() {
		if err := m.memory.Delete(ctx, key); err != nil && !errors.Is(err, types.ErrClosed) {
			m.logger.Debug("Memory DELETE failed", "key", key, "error", err)
		}
	}
	if options.Tiers.IncludesRedis() {
		if err := m.redis.Delete(ctx, key); err != nil && !types.IsRedisUnavailable(err) {
			m.logger.Debug("Redis DELETE failed", "key", key, "error", err)
		}
	}
	if options.Tiers.IncludesLocal() {
		if err := m.local.Delete(ctx, key); err != nil && !errors.Is(err, types.ErrClosed) {
			m.logger.Debug("Local DELETE failed", "key", key, "error", err)
		}
	}

	if m.metrics != nil {
		m.metrics.RecordDelete(key, time.Since(start))
	}
	return nil
}

// Clear empties every tier's namespace and resets the stats counters.
func (m *Manager) Clear(ctx context.Context) error {
	if m.closed.Load() {
		return types.ErrClosed
	}

	if err := m.memory.Clear(ctx); err != nil && !errors.Is(err, types.ErrClosed) {
		m.logger.Warn("Memory CLEAR failed", "error", err)
	}
	if err := m.redis.Clear(ctx); err != nil && !types.IsRedisUnavailable(err) {
		m.logger.Warn("Redis CLEAR failed", "error", err)
	}
	if err := m.local.Clear(ctx); err != nil && !errors.Is(err, types.ErrClosed) {
		m.logger.Warn("Local CLEAR failed", "error", err)
	}

	m.hits.Store(0)
	m.misses.Store(0)
	return nil
}

// InvalidateByTags removes every memory entry whose tags intersect the
// given tags, and best-effort deletes the keys recorded in each tag's
// remote set. The local tier does not track tags and is left untouched.
// Returns the number of memory entries removed.
func (m *Manager) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	if m.closed.Load() {
		return 0, types.ErrClosed
	}
	if len(tags) == 0 {
		return 0, nil
	}

	removed, err := m.memory.InvalidateByTags(ctx, tags)
	if err != nil && !errors.Is(err, types.ErrClosed) {
		m.logger.Warn("Memory tag invalidation failed", "tags", tags, "error", err)
	}

	if _, err := m.redis.InvalidateByTags(ctx, tags); err != nil && !types.IsRedisUnavailable(err) {
		m.logger.Warn("Redis tag invalidation incomplete", "tags", tags, "error", err)
		if m.metrics != nil {
			m.metrics.RecordError("redis", "InvalidateByTags", err)
		}
	}

	if m.metrics != nil {
		m.metrics.RecordInvalidation(removed)
	}
	return removed, nil
}

// GetOrSet is the cache-aside helper: Get, and on miss run the loader,
// Set its result, and return it. Concurrent callers for the same key
// share one loader invocation. Only the loader's error propagates; tier
// failures never do.
func (m *Manager) GetOrSet(ctx context.Context, key string, dest any, loader func(ctx context.Context) (any, error), opts ...types.Option) error {
	if m.closed.Load() {
		return types.ErrClosed
	}

	err := m.Get(ctx, key, dest, opts...)
	if err == nil {
		return nil
	}
	if !types.IsCacheMiss(err) {
		return err
	}

	result, err, _ := m.sfGroup.Do(key, func() (any, error) {
		// A concurrent caller may have populated the key while we
		// waited on the flight group. Probe the tiers directly: the
		// outer Get already counted this lookup, so the re-check must
		// not touch the stats.
		options := m.applyDefaults(opts...)
		if data, _, checkErr := m.probeTiers(ctx, key, options); checkErr == nil {
			return data, nil
		}

		value, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}

		data, marshalErr := m.serializer.Marshal(value)
		if marshalErr != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrSerialization, marshalErr)
		}

		if setErr := m.Set(ctx, key, value, opts...); setErr != nil {
			m.logger.Debug("Failed to cache loader result", "key", key, "error", setErr)
		}

		return data, nil
	})
	if err != nil {
		return err
	}

	data, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected flight result type: %T", result)
	}
	return m.serializer.Unmarshal(data, dest)
}

// WarmUp runs all loaders concurrently and populates the cache with their
// results. Individual loader failures are logged and tolerated; the
// return value is the number of entries loaded successfully.
func (m *Manager) WarmUp(ctx context.Context, loaders map[string]func(ctx context.Context) (any, error), opts ...types.Option) (int, error) {
	if m.closed.Load() {
		return 0, types.ErrClosed
	}

	var loaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for key, loader := range loaders {
		key, loader := key, loader
		g.Go(func() error {
			value, err := loader(gctx)
			if err != nil {
				m.logger.Warn("Warm-up loader failed", "key", key, "error", err)
				return nil
			}
			if err := m.Set(gctx, key, value, opts...); err != nil {
				m.logger.Warn("Warm-up SET failed", "key", key, "error", err)
				return nil
			}
			loaded.Add(1)
			return nil
		})
	}

	// Loader failures are swallowed above, so this only reflects ctx
	// cancellation.
	err := g.Wait()
	return int(loaded.Load()), err
}

// Stats returns a snapshot of manager-wide counters. Size and memory
// usage describe the memory tier.
func (m *Manager) Stats() types.CacheStats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	stats := types.CacheStats{
		Hits:        hits,
		Misses:      misses,
		Size:        m.memory.EntryCount(),
		MemoryUsage: m.memory.UsedBytes(),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// IsRedisAvailable returns true if the Redis tier is connected.
func (m *Manager) IsRedisAvailable() bool {
	return m.redis.IsAvailable()
}

// Close releases all tiers.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	var errs []error
	if err := m.memory.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.redis.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.local.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (m *Manager) applyDefaults(opts ...types.Option) *types.CacheOptions {
	options := types.ApplyOptions(opts...)

	if !options.HasTTL() && m.config.Defaults.TTL != 0 {
		options.TTL = m.config.Defaults.TTL
	}
	if !options.HasTiers() {
		if t := parseTiers(m.config.Defaults.Tiers); t != 0 {
			options.Tiers = t
		}
	}
	return options
}

func parseTiers(s string) types.Tiers {
	switch s {
	case "memory":
		return types.TierMemory
	case "redis":
		return types.TierRedis
	case "local":
		return types.TierLocal
	case "memory+redis":
		return types.TierMemory | types.TierRedis
	case "all":
		return types.TiersAll
	default:
		return 0
	}
}

