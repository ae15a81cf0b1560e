package types

import "time"

// Publisher sends individual metrics to a backend (DataDog StatsD, logs,
// or nothing).
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)
	Event(title, text, alertType string, tags ...string)
	PublishHealthMetrics(m *HealthMetrics)
	Close() error
}

// MetricsSnapshot is a point-in-time view of tracked cache activity.
type MetricsSnapshot struct {
	Timestamp time.Time `json:"timestamp"`

	MemoryHits   int64 `json:"memoryHits"`
	MemoryMisses int64 `json:"memoryMisses"`
	RedisHits    int64 `json:"redisHits"`
	RedisMisses  int64 `json:"redisMisses"`
	LocalHits    int64 `json:"localHits"`

	GetCount            int64 `json:"getCount"`
	SetCount            int64 `json:"setCount"`
	DeleteCount         int64 `json:"deleteCount"`
	InvalidatedEntries  int64 `json:"invalidatedEntries"`
	ErrorCount          int64 `json:"errorCount"`
	BreakerStateChanges int64 `json:"breakerStateChanges"`

	AvgLatencyMs float64 `json:"avgLatencyMs"`
	P50LatencyMs float64 `json:"p50LatencyMs"`
	P95LatencyMs float64 `json:"p95LatencyMs"`
	P99LatencyMs float64 `json:"p99LatencyMs"`
}

// TotalHitRatio returns hits over total lookups across all tiers.
func (s MetricsSnapshot) TotalHitRatio() float64 {
	hits := s.MemoryHits + s.RedisHits + s.LocalHits
	total := hits + s.MemoryMisses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// HealthMetrics is the batch published on each reporting interval.
type HealthMetrics struct {
	MemoryUsedBytes  int64   `json:"memoryUsedBytes"`
	TotalEntries     int     `json:"totalEntries"`
	HitRatio         float64 `json:"hitRatio"`
	AverageLatencyMs float64 `json:"averageLatencyMs"`
	RedisConnected   bool    `json:"redisConnected"`
}
