package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// memoryEntry is one cached value in the process-local tier. The tier is
// its exclusive owner; nothing outside this file mutates it.
type memoryEntry struct {
	data      []byte
	tags      []string
	writtenAt time.Time
	readAt    time.Time
	ttl       time.Duration
	hits      int64
}

// expired reports whether the entry is past its TTL at now. A TTL of zero
// or less means the entry was born expired.
func (e *memoryEntry) expired(now time.Time) bool {
	if e.ttl <= 0 {
		return true
	}
	return now.Sub(e.writtenAt) > e.ttl
}

// MemoryCache implements the process-local tier: a bounded map with lazy
// expiry on read, a janitor sweep for entries that are never re-read, and
// eviction at capacity by oldest write (or least-recent read when the
// "lru" strategy is configured).
type MemoryCache struct {
	config config.MemoryConfig
	logger *slog.Logger

	mu        sync.Mutex
	entries   map[string]*memoryEntry
	usedBytes int64

	hits        atomic.Int64
	misses      atomic.Int64
	sets        atomic.Int64
	deletes     atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64

	janitorStop chan struct{}
	janitorWg   sync.WaitGroup
	closed      atomic.Bool
}

// NewMemoryCache creates a new memory tier with the given configuration.
func NewMemoryCache(cfg config.MemoryConfig, logger *slog.Logger) *MemoryCache {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}

	mc := &MemoryCache{
		config:      cfg,
		logger:      logger.With("component", "memory-cache"),
		entries:     make(map[string]*memoryEntry),
		janitorStop: make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		mc.janitorWg.Add(1)
		go mc.janitor(cfg.SweepInterval)
	}

	return mc
}

// Name returns the tier name.
func (c *MemoryCache) Name() string {
	return "memory"
}

// IsAvailable returns true if the tier is not closed.
func (c *MemoryCache) IsAvailable() bool {
	return !c.closed.Load()
}

// Get retrieves a value, counting a hit and refreshing the read time.
// Expired entries are removed on sight.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, types.ErrClosed
	}

	now := time.Now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, types.ErrCacheMiss
	}
	if entry.expired(now) {
		c.removeLocked(key, entry)
		c.mu.Unlock()
		c.expirations.Add(1)
		c.misses.Add(1)
		return nil, types.ErrCacheMiss
	}
	entry.hits++
	entry.readAt = now
	data := entry.data
	c.mu.Unlock()

	c.hits.Add(1)
	return data, nil
}

// Set stores a value. When the tier is full and the key is new, the entry
// selected by the eviction strategy is removed first, so memory writes
// always succeed.
func (c *MemoryCache) Set(ctx context.Context, key string, e types.TierEntry) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	now := time.Now()
	entry := &memoryEntry{
		data:      e.Data,
		tags:      e.Tags,
		writtenAt: now,
		readAt:    now,
		ttl:       e.TTL,
	}

	c.mu.Lock()
	if old, ok := c.entries[key]; ok {
		c.usedBytes -= int64(len(old.data))
	} else if len(c.entries) >= c.config.MaxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry
	c.usedBytes += int64(len(e.Data))
	c.mu.Unlock()

	c.sets.Add(1)
	return nil
}

// evictLocked removes one entry to make room. Must be called with mu held.
func (c *MemoryCache) evictLocked() {
	var victim string
	var victimEntry *memoryEntry
	useLRU := c.config.Eviction == "lru"

	for key, entry := range c.entries {
		if victimEntry == nil {
			victim, victimEntry = key, entry
			continue
		}
		if useLRU {
			if entry.readAt.Before(victimEntry.readAt) {
				victim, victimEntry = key, entry
			}
		} else if entry.writtenAt.Before(victimEntry.writtenAt) {
			victim, victimEntry = key, entry
		}
	}

	if victimEntry != nil {
		c.removeLocked(victim, victimEntry)
		c.evictions.Add(1)
		c.logger.Debug("Evicted entry at capacity", "key", victim)
	}
}

func (c *MemoryCache) removeLocked(key string, entry *memoryEntry) {
	delete(c.entries, key)
	c.usedBytes -= int64(len(entry.data))
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.removeLocked(key, entry)
	}
	c.mu.Unlock()

	c.deletes.Add(1)
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	c.mu.Lock()
	c.entries = make(map[string]*memoryEntry)
	c.usedBytes = 0
	c.mu.Unlock()

	return nil
}

// InvalidateByTags deletes every entry whose tag set intersects tags and
// returns the number of entries removed.
func (c *MemoryCache) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	if c.closed.Load() {
		return 0, types.ErrClosed
	}
	if len(tags) == 0 {
		return 0, nil
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[tag] = struct{}{}
	}

	removed := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		for _, tag := range entry.tags {
			if _, ok := wanted[tag]; ok {
				c.removeLocked(key, entry)
				removed++
				break
			}
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("Invalidated entries by tags", "tags", tags, "removed", removed)
	}
	return removed, nil
}

// janitor periodically removes expired entries so keys that are written
// but never re-read do not accumulate.
func (c *MemoryCache) janitor(interval time.Duration) {
	defer c.janitorWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.janitorStop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() {
	now := time.Now()
	swept := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if entry.expired(now) {
			c.removeLocked(key, entry)
			swept++
		}
	}
	c.mu.Unlock()

	if swept > 0 {
		c.expirations.Add(int64(swept))
		c.logger.Debug("Janitor swept expired entries", "count", swept)
	}
}

// Close stops the janitor and releases all entries.
func (c *MemoryCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.janitorStop)
	c.janitorWg.Wait()

	c.mu.Lock()
	c.entries = nil
	c.usedBytes = 0
	c.mu.Unlock()
	return nil
}

// Stats returns tier counters.
func (c *MemoryCache) Stats() types.MemoryTierStats {
	return types.MemoryTierStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Deletes:     c.deletes.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}

// EntryCount returns the number of live entries.
func (c *MemoryCache) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// UsedBytes returns the total serialized payload size held by the tier.
func (c *MemoryCache) UsedBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedBytes
}

var _ types.MemoryTier = (*MemoryCache)(nil)
