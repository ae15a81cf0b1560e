package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// After this many consecutive errors the tier marks itself disconnected
// and waits for the health check to restore it.
const disconnectErrorThreshold = 5

// RedisCache implements the shared remote tier. Construction never fails
// on an unreachable server; the tier starts disconnected and the health
// check worker keeps probing.
type RedisCache struct {
	client *redis.Client
	config *config.RedisConfig
	logger *slog.Logger

	mu            sync.Mutex
	lastError     error
	lastErrorTime time.Time
	connected     atomic.Bool
	errorCount    atomic.Int64

	healthStop chan struct{}
	healthWg   sync.WaitGroup
}

// NewRedisCache creates a new Redis tier with the given configuration.
func NewRedisCache(cfg *config.RedisConfig, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password.Value(),
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify,
		}
		if cfg.TLSSkipVerify {
			logger.Warn("TLS certificate verification is disabled")
		}
	}

	rc := &RedisCache{
		client:     redis.NewClient(opts),
		config:     cfg,
		logger:     logger.With("component", "redis-cache"),
		healthStop: make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rc.client.Ping(ctx).Err(); err != nil {
		rc.logger.Warn("Redis initial connection failed, tier degraded", "error", err)
		rc.setError(err)
	} else {
		rc.connected.Store(true)
		rc.logger.Info("Redis connected", "address", cfg.Address)
	}

	if cfg.HealthCheckInterval > 0 {
		rc.healthWg.Add(1)
		go rc.healthCheckWorker()
	}

	return rc
}

// Name returns the tier name.
func (c *RedisCache) Name() string {
	return "redis"
}

// IsAvailable returns true if the tier currently believes it is connected.
func (c *RedisCache) IsAvailable() bool {
	return c.connected.Load()
}

func (c *RedisCache) dataKey(key string) string {
	return c.config.KeyPrefix + key
}

func (c *RedisCache) tagKey(tag string) string {
	return c.config.KeyPrefix + "tag:" + tag
}

// opCtx bounds a single remote round-trip so a slow server degrades to a
// miss rather than stalling the whole lookup.
func (c *RedisCache) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.config.OpTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Get retrieves and unframes a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.connected.Load() {
		return nil, types.ErrRedisUnavailable
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	data, err := c.client.Get(ctx, c.dataKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrCacheMiss
		}
		c.handleError(err)
		return nil, types.NewCacheError("Get", key, "redis", err)
	}

	payload, err := unframe(data)
	if err != nil {
		c.logger.Warn("Discarding undecodable remote entry", "key", key, "error", err)
		return nil, types.ErrCacheMiss
	}

	c.clearError()
	return payload, nil
}

// Set frames and stores a value with server-side expiry, and records tag
// membership in one set per tag. A tag set expires with the longest TTL
// seen for that tag.
func (c *RedisCache) Set(ctx context.Context, key string, e types.TierEntry) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}
	if e.TTL <= 0 {
		// Born expired; nothing to store remotely.
		return nil
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	framed := frame(e.Data, c.config.CompressThreshold)
	dk := c.dataKey(key)

	pipe := c.client.Pipeline()
	pipe.Set(ctx, dk, framed, e.TTL)
	for _, tag := range e.Tags {
		tk := c.tagKey(tag)
		pipe.SAdd(ctx, tk, dk)
		// Extend the set's life only when this entry outlives it.
		pipe.ExpireGT(ctx, tk, e.TTL)
		pipe.ExpireNX(ctx, tk, e.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		c.handleError(err)
		return types.NewCacheError("Set", key, "redis", err)
	}

	c.clearError()
	return nil
}

// Delete removes a value. Tag sets are left to expire on their own.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	if err := c.client.Del(ctx, c.dataKey(key)).Err(); err != nil {
		c.handleError(err)
		return types.NewCacheError("Delete", key, "redis", err)
	}

	c.clearError()
	return nil
}

// InvalidateByTags deletes every key recorded in each tag's membership
// set, then the sets themselves. Best effort; returns the number of data
// keys deleted.
func (c *RedisCache) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	if !c.connected.Load() {
		return 0, types.ErrRedisUnavailable
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	deleted := 0
	for _, tag := range tags {
		tk := c.tagKey(tag)

		members, err := c.client.SMembers(ctx, tk).Result()
		if err != nil {
			c.handleError(err)
			return deleted, types.NewCacheError("InvalidateByTags", tag, "redis", err)
		}

		if len(members) > 0 {
			if err := c.client.Del(ctx, members...).Err(); err != nil {
				c.handleError(err)
				return deleted, types.NewCacheError("InvalidateByTags", tag, "redis", err)
			}
			deleted += len(members)
		}

		if err := c.client.Del(ctx, tk).Err(); err != nil {
			c.handleError(err)
			return deleted, types.NewCacheError("InvalidateByTags", tag, "redis", err)
		}
	}

	c.clearError()
	return deleted, nil
}

// Clear deletes every key under the tier's namespace prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	pattern := c.config.KeyPrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err)
			return types.NewCacheError("Clear", pattern, "redis", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err)
				return types.NewCacheError("Clear", pattern, "redis", err)
			}
			deleted += int64(len(keys))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Cleared remote namespace", "pattern", pattern, "deleted", deleted)
	c.clearError()
	return nil
}

func (c *RedisCache) healthCheckWorker() {
	defer c.healthWg.Done()

	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.healthStop:
			return
		case <-ticker.C:
			c.performHealthCheck()
		}
	}
}

func (c *RedisCache) performHealthCheck() {
	wasConnected := c.connected.Load()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.DialTimeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		if wasConnected {
			c.logger.Warn("Redis health check failed", "error", err)
			c.setError(err)
		}
		return
	}

	if !wasConnected {
		c.connected.Store(true)
		c.errorCount.Store(0)
		c.logger.Info("Redis connection restored via health check")
	}
}

// Close stops the health check worker and closes the client.
func (c *RedisCache) Close() error {
	c.connected.Store(false)
	close(c.healthStop)
	c.healthWg.Wait()
	return c.client.Close()
}

// LastError returns the most recent error and its time.
func (c *RedisCache) LastError() (error, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError, c.lastErrorTime
}

func (c *RedisCache) handleError(err error) {
	c.mu.Lock()
	c.lastError = err
	c.lastErrorTime = time.Now()
	c.mu.Unlock()

	if c.errorCount.Add(1) >= disconnectErrorThreshold {
		if c.connected.CompareAndSwap(true, false) {
			c.logger.Warn("Redis marked as disconnected after repeated errors", "last_error", err)
		}
	}
}

func (c *RedisCache) clearError() {
	if c.errorCount.Swap(0) > 0 {
		if c.connected.CompareAndSwap(false, true) {
			c.logger.Info("Redis connection restored")
		}
	}
}

func (c *RedisCache) setError(err error) {
	c.mu.Lock()
	c.lastError = err
	c.lastErrorTime = time.Now()
	c.mu.Unlock()
	c.connected.Store(false)
}

var _ types.RedisTier = (*RedisCache)(nil)
