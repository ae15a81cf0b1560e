package datadog

import (
	"time"

	"github.com/wellfolk/lifeline/internal/types"
)

// NoOpPublisher is returned when DataDog reporting is disabled.
type NoOpPublisher struct{}

func (p *NoOpPublisher) Gauge(name string, value float64, tags ...string)           {}
func (p *NoOpPublisher) Incr(name string, tags ...string)                           {}
func (p *NoOpPublisher) Count(name string, value int64, tags ...string)             {}
func (p *NoOpPublisher) Histogram(name string, value float64, tags ...string)       {}
func (p *NoOpPublisher) Timing(name string, duration time.Duration, tags ...string) {}
func (p *NoOpPublisher) Event(title, text, alertType string, tags ...string)        {}
func (p *NoOpPublisher) PublishHealthMetrics(m *types.HealthMetrics)                {}
func (p *NoOpPublisher) Close() error                                               { return nil }

var _ types.Publisher = (*NoOpPublisher)(nil)
