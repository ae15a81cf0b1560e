package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// localEnvelope wraps a payload with the absolute expiry computed at write
// time, mirroring how a browser-side store stamps its entries.
type localEnvelope struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LocalCache implements the client-durable tier as a directory of envelope
// files, one per key. It survives process restarts but is scoped to a
// single device; tags are not tracked here.
type LocalCache struct {
	dir    string
	prefix string
	logger *slog.Logger

	mu     sync.Mutex
	closed atomic.Bool
}

// NewLocalCache creates the tier, making sure its directory exists.
func NewLocalCache(cfg config.LocalConfig, logger *slog.Logger) (*LocalCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, types.NewCacheError("New", "", "local", err)
	}

	return &LocalCache{
		dir:    cfg.Dir,
		prefix: cfg.KeyPrefix,
		logger: logger.With("component", "local-cache"),
	}, nil
}

// Name returns the tier name.
func (c *LocalCache) Name() string {
	return "local"
}

// IsAvailable returns true if the tier is not closed.
func (c *LocalCache) IsAvailable() bool {
	return !c.closed.Load()
}

// Keys are base64url-encoded so arbitrary key strings map to safe file
// names while remaining enumerable by prefix.
func (c *LocalCache) filename(key string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(key))
	return filepath.Join(c.dir, c.prefix+encoded+".json")
}

// Get reads an envelope, discarding and removing it when expired.
func (c *LocalCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, types.ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.filename(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrCacheMiss
		}
		return nil, types.NewCacheError("Get", key, "local", err)
	}

	var env localEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt envelope; drop it and report a miss.
		_ = os.Remove(path)
		return nil, types.ErrCacheMiss
	}

	if !time.Now().Before(env.ExpiresAt) {
		_ = os.Remove(path)
		return nil, types.ErrCacheMiss
	}

	return env.Data, nil
}

// Set writes an envelope atomically via a temp file and rename.
func (c *LocalCache) Set(ctx context.Context, key string, e types.TierEntry) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	env := localEnvelope{
		Data:      e.Data,
		ExpiresAt: time.Now().Add(e.TTL),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return types.NewCacheError("Set", key, "local", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.filename(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return types.NewCacheError("Set", key, "local", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return types.NewCacheError("Set", key, "local", err)
	}

	return nil
}

// Delete removes a key's envelope file.
func (c *LocalCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.filename(key)); err != nil && !os.IsNotExist(err) {
		return types.NewCacheError("Delete", key, "local", err)
	}
	return nil
}

// Clear removes every envelope under the tier's namespace prefix.
func (c *LocalCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return types.NewCacheError("Clear", "", "local", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, c.prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err == nil {
			removed++
		}
	}

	c.logger.Debug("Cleared local namespace", "removed", removed)
	return nil
}

// Close marks the tier closed. Files stay on disk for the next run.
func (c *LocalCache) Close() error {
	c.closed.Store(true)
	return nil
}

var _ types.LocalTier = (*LocalCache)(nil)
