// Package metrics provides cache and breaker metrics collection and
// publishing.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wellfolk/lifeline/internal/types"
)

const defaultLatencyBufferSize = 10000

// Tracker accumulates operation counters and a ring buffer of latencies.
type Tracker struct {
	memoryHits   atomic.Int64
	memoryMisses atomic.Int64
	redisHits    atomic.Int64
	localHits    atomic.Int64

	getCount           atomic.Int64
	setCount           atomic.Int64
	deleteCount        atomic.Int64
	invalidatedEntries atomic.Int64
	errorCount         atomic.Int64

	breakerStateChanges atomic.Int64

	totalBytesWritten atomic.Int64

	latencyMu     sync.RWMutex
	latencyBuffer []time.Duration
	latencyIndex  int
	latencyCount  int
}

func NewTracker() *Tracker {
	return &Tracker{
		latencyBuffer: make([]time.Duration, defaultLatencyBufferSize),
	}
}

func (t *Tracker) RecordHit(tier string, key string, latency time.Duration) {
	switch tier {
	case "memory":
		t.memoryHits.Add(1)
	case "redis":
		t.redisHits.Add(1)
	case "local":
		t.localHits.Add(1)
	}
	t.getCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordMiss(key string, latency time.Duration) {
	t.memoryMisses.Add(1)
	t.getCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordSet(tier string, key string, size int, latency time.Duration) {
	t.setCount.Add(1)
	t.totalBytesWritten.Add(int64(size))
	t.recordLatency(latency)
}

func (t *Tracker) RecordDelete(key string, latency time.Duration) {
	t.deleteCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordInvalidation(entries int) {
	t.invalidatedEntries.Add(int64(entries))
}

func (t *Tracker) RecordError(tier string, operation string, err error) {
	t.errorCount.Add(1)
}

func (t *Tracker) RecordBreakerStateChange(service, from, to string) {
	t.breakerStateChanges.Add(1)
}

// recordLatency appends into the circular buffer. O(1), no allocations.
func (t *Tracker) recordLatency(latency time.Duration) {
	t.latencyMu.Lock()
	t.latencyBuffer[t.latencyIndex] = latency
	t.latencyIndex = (t.latencyIndex + 1) % len(t.latencyBuffer)
	if t.latencyCount < len(t.latencyBuffer) {
		t.latencyCount++
	}
	t.latencyMu.Unlock()
}

// Snapshot returns the current counters plus latency percentiles computed
// over the ring buffer.
func (t *Tracker) Snapshot() types.MetricsSnapshot {
	t.latencyMu.RLock()
	count := t.latencyCount
	latencyCopy := make([]time.Duration, count)
	if count > 0 {
		if count < len(t.latencyBuffer) {
			copy(latencyCopy, t.latencyBuffer[:count])
		} else {
			// Full buffer: oldest sample sits at latencyIndex.
			firstPart := len(t.latencyBuffer) - t.latencyIndex
			copy(latencyCopy[:firstPart], t.latencyBuffer[t.latencyIndex:])
			copy(latencyCopy[firstPart:], t.latencyBuffer[:t.latencyIndex])
		}
	}
	t.latencyMu.RUnlock()

	snapshot := types.MetricsSnapshot{
		Timestamp:           time.Now(),
		MemoryHits:          t.memoryHits.Load(),
		MemoryMisses:        t.memoryMisses.Load(),
		RedisHits:           t.redisHits.Load(),
		LocalHits:           t.localHits.Load(),
		GetCount:            t.getCount.Load(),
		SetCount:            t.setCount.Load(),
		DeleteCount:         t.deleteCount.Load(),
		InvalidatedEntries:  t.invalidatedEntries.Load(),
		ErrorCount:          t.errorCount.Load(),
		BreakerStateChanges: t.breakerStateChanges.Load(),
	}

	if len(latencyCopy) > 0 {
		snapshot.AvgLatencyMs = float64(avgDuration(latencyCopy).Microseconds()) / 1000
		snapshot.P50LatencyMs = float64(percentile(latencyCopy, 50).Microseconds()) / 1000
		snapshot.P95LatencyMs = float64(percentile(latencyCopy, 95).Microseconds()) / 1000
		snapshot.P99LatencyMs = float64(percentile(latencyCopy, 99).Microseconds()) / 1000
	}

	return snapshot
}

// Reset clears all counters and the latency buffer.
func (t *Tracker) Reset() {
	t.memoryHits.Store(0)
	t.memoryMisses.Store(0)
	t.redisHits.Store(0)
	t.localHits.Store(0)
	t.getCount.Store(0)
	t.setCount.Store(0)
	t.deleteCount.Store(0)
	t.invalidatedEntries.Store(0)
	t.errorCount.Store(0)
	t.breakerStateChanges.Store(0)
	t.totalBytesWritten.Store(0)

	t.latencyMu.Lock()
	t.latencyIndex = 0
	t.latencyCount = 0
	t.latencyMu.Unlock()
}

func avgDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

func percentile(durations []time.Duration, p int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	slices.Sort(sorted)

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

var _ types.MetricsRecorder = (*Tracker)(nil)
