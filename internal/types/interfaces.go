package types

import (
	"context"
	"time"
)

type TierInfo interface {
	Name() string
	IsAvailable() bool
}

type TierReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type TierWriter interface {
	Set(ctx context.Context, key string, entry TierEntry) error
	Delete(ctx context.Context, key string) error
}

type TierClearer interface {
	Clear(ctx context.Context) error
}

type TierCloser interface {
	Close() error
}

// TagInvalidator removes every entry whose tag set intersects the given
// tags, returning the number of entries removed.
type TagInvalidator interface {
	InvalidateByTags(ctx context.Context, tags []string) (int, error)
}

// MemoryTier is the process-local tier: synchronous, bounded, and the only
// tier whose writes are guaranteed.
type MemoryTier interface {
	TierInfo
	TierReader
	TierWriter
	TierClearer
	TierCloser
	TagInvalidator
	Stats() MemoryTierStats
	EntryCount() int
	UsedBytes() int64
}

// RedisTier is the shared remote tier. Implementations degrade to
// unavailable rather than failing construction.
type RedisTier interface {
	TierInfo
	TierReader
	TierWriter
	TierClearer
	TierCloser
	TagInvalidator
}

// LocalTier is the client-durable tier. Tags are not tracked here.
type LocalTier interface {
	TierInfo
	TierReader
	TierWriter
	TierClearer
	TierCloser
}

type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

type MetricsRecorder interface {
	RecordHit(tier string, key string, latency time.Duration)
	RecordMiss(key string, latency time.Duration)
	RecordSet(tier string, key string, size int, latency time.Duration)
	RecordDelete(key string, latency time.Duration)
	RecordInvalidation(entries int)
	RecordError(tier string, operation string, err error)
	RecordBreakerStateChange(service, from, to string)
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
