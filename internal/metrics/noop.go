package metrics

import (
	"time"

	"github.com/wellfolk/lifeline/internal/types"
)

// NoOpTracker is a no-operation metrics tracker.
type NoOpTracker struct{}

func NewNoOpTracker() *NoOpTracker { return &NoOpTracker{} }

func (t *NoOpTracker) RecordHit(tier string, key string, latency time.Duration)           {}
func (t *NoOpTracker) RecordMiss(key string, latency time.Duration)                       {}
func (t *NoOpTracker) RecordSet(tier string, key string, size int, latency time.Duration) {}
func (t *NoOpTracker) RecordDelete(key string, latency time.Duration)                     {}
func (t *NoOpTracker) RecordInvalidation(entries int)                                     {}
func (t *NoOpTracker) RecordError(tier string, operation string, err error)               {}
func (t *NoOpTracker) RecordBreakerStateChange(service, from, to string)                  {}
func (t *NoOpTracker) Snapshot() types.MetricsSnapshot                                    { return types.MetricsSnapshot{} }
func (t *NoOpTracker) Reset()                                                             {}

// NoOpPublisher is a no-operation metrics publisher used when reporting
// is disabled.
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher { return &NoOpPublisher{} }

func (p *NoOpPublisher) Gauge(name string, value float64, tags ...string)             {}
func (p *NoOpPublisher) Incr(name string, tags ...string)                             {}
func (p *NoOpPublisher) Count(name string, value int64, tags ...string)               {}
func (p *NoOpPublisher) Histogram(name string, value float64, tags ...string)         {}
func (p *NoOpPublisher) Timing(name string, duration time.Duration, tags ...string)   {}
func (p *NoOpPublisher) Event(title, text, alertType string, tags ...string)          {}
func (p *NoOpPublisher) PublishHealthMetrics(m *types.HealthMetrics)                  {}
func (p *NoOpPublisher) Close() error                                                 { return nil }

var _ types.MetricsRecorder = (*NoOpTracker)(nil)
var _ types.Publisher = (*NoOpPublisher)(nil)
