package cache

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// These tests need a running Redis server. Set REDIS_TEST_ADDRESS to
// point at one, or run redis locally; otherwise they skip.

func redisTestAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func skipIfRedisUnavailable(t *testing.T) *RedisCache {
	t.Helper()

	cfg := config.ForTestingWithRedis(redisTestAddress()).Redis
	cfg.KeyPrefix = "lifeline:test:"

	rc := NewRedisCache(&cfg, nil)
	if !rc.IsAvailable() {
		rc.Close()
		t.Skip("Redis is not available")
	}

	_ = rc.Clear(context.Background())
	t.Cleanup(func() {
		_ = rc.Clear(context.Background())
		rc.Close()
	})
	return rc
}

func TestRedisSetGet(t *testing.T) {
	rc := skipIfRedisUnavailable(t)
	ctx := context.Background()

	t.Run("miss for absent key", func(t *testing.T) {
		_, err := rc.Get(ctx, "absent")
		assert.ErrorIs(t, err, types.ErrCacheMiss)
	})

	t.Run("round trip", func(t *testing.T) {
		value := []byte(`{"userId":"123","steps":9214}`)
		require.NoError(t, rc.Set(ctx, "steps", entry(string(value), time.Minute)))

		got, err := rc.Get(ctx, "steps")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("zero TTL stores nothing", func(t *testing.T) {
		require.NoError(t, rc.Set(ctx, "ephemeral", entry("v", 0)))
		_, err := rc.Get(ctx, "ephemeral")
		assert.ErrorIs(t, err, types.ErrCacheMiss)
	})
}

func TestRedisCompressedPayload(t *testing.T) {
	rc := skipIfRedisUnavailable(t)
	ctx := context.Background()

	// Well above the test config's 1 KiB compression threshold.
	payload := bytes.Repeat([]byte(`{"heartRate":72},`), 1000)
	require.NoError(t, rc.Set(ctx, "big", types.TierEntry{Data: payload, TTL: time.Minute}))

	got, err := rc.Get(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRedisServerSideExpiry(t *testing.T) {
	rc := skipIfRedisUnavailable(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "short", entry("v", 100*time.Millisecond)))
	time.Sleep(200 * time.Millisecond)

	_, err := rc.Get(ctx, "short")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
}

func TestRedisTagInvalidation(t *testing.T) {
	rc := skipIfRedisUnavailable(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "steps", entry("v1", time.Minute, "user:123")))
	require.NoError(t, rc.Set(ctx, "sleep", entry("v2", time.Minute, "user:123", "sleep")))
	require.NoError(t, rc.Set(ctx, "other", entry("v3", time.Minute, "user:456")))

	deleted, err := rc.InvalidateByTags(ctx, []string{"user:123"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = rc.Get(ctx, "steps")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
	_, err = rc.Get(ctx, "sleep")
	assert.ErrorIs(t, err, types.ErrCacheMiss)

	got, err := rc.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []byte("v3"), got)
}

func TestRedisDelete(t *testing.T) {
	rc := skipIfRedisUnavailable(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k1", entry("v1", time.Minute)))
	require.NoError(t, rc.Delete(ctx, "k1"))

	_, err := rc.Get(ctx, "k1")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
}

func TestRedisClear(t *testing.T) {
	rc := skipIfRedisUnavailable(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, rc.Set(ctx, key, entry("v", time.Minute)))
	}
	require.NoError(t, rc.Clear(ctx))

	for _, key := range []string{"a", "b", "c"} {
		_, err := rc.Get(ctx, key)
		assert.ErrorIs(t, err, types.ErrCacheMiss)
	}
}

func newTestManagerWithRedis(t *testing.T) *Manager {
	t.Helper()

	cfg := config.ForTestingWithRedis(redisTestAddress())
	cfg.Redis.KeyPrefix = "lifeline:test:manager:"

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)

	if !m.IsRedisAvailable() {
		m.Close()
		t.Skip("Redis is not available")
	}

	_ = m.Clear(context.Background())
	t.Cleanup(func() {
		_ = m.Clear(context.Background())
		m.Close()
	})
	return m
}

func TestManagerRedisPromotion(t *testing.T) {
	m := newTestManagerWithRedis(t)
	ctx := context.Background()

	// Written to Redis only; the first read promotes it into memory.
	require.NoError(t, m.Set(ctx, "k1", "v1", withTiers(types.TierRedis)))

	var got string
	require.NoError(t, m.Get(ctx, "k1", &got))
	assert.Equal(t, "v1", got)

	// The promoted copy now serves from the memory tier.
	data, err := m.memory.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"v1"`), data)
}

func TestManagerRedisWriteThrough(t *testing.T) {
	m := newTestManagerWithRedis(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k1", wellnessRecord{UserID: "123", Steps: 42}))

	// Visible directly in the remote tier, not just in memory.
	data, err := m.redis.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"steps":42`)
}
