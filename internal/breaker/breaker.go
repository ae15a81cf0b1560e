package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

// Call describes one protected invocation.
type Call struct {
	// Service names the downstream dependency; each service gets its own
	// breaker state.
	Service string
	// Run is the primary operation.
	Run func(ctx context.Context) (any, error)
	// Fallback, if set, runs when the primary fails or the breaker is
	// open. Its cause argument is the primary error (or ErrCircuitOpen).
	Fallback func(ctx context.Context, cause error) (any, error)
	// Timeout overrides the configured call timeout when positive.
	Timeout time.Duration
}

// StateChangeFunc observes breaker transitions. It is invoked outside the
// breaker's lock, so it may call back into the breaker.
type StateChangeFunc func(service string, from, to State)

// serviceState holds one service's counters. All fields are guarded by
// the owning Breaker's mutex.
type serviceState struct {
	state           State
	failures        int64
	successes       int64
	requestCount    int64
	lastFailureTime time.Time
	nextAttemptTime time.Time
}

// Breaker is a registry of per-service circuit breakers sharing one
// configuration.
type Breaker struct {
	config  config.BreakerConfig
	logger  *slog.Logger
	metrics types.MetricsRecorder

	mu            sync.Mutex
	services      map[string]*serviceState
	onStateChange StateChangeFunc
}

// New creates a breaker registry with the given configuration.
func New(cfg config.BreakerConfig, logger *slog.Logger, metrics types.MetricsRecorder) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Breaker{
		config:   cfg,
		logger:   logger.With("component", "circuit-breaker"),
		metrics:  metrics,
		services: make(map[string]*serviceState),
	}
}

// SetOnStateChange registers a transition observer.
func (b *Breaker) SetOnStateChange(fn StateChangeFunc) {
	b.mu.Lock()
	b.onStateChange = fn
	b.mu.Unlock()
}

// Execute runs the call through the service's breaker. When the breaker
// is open, or the primary fails, the fallback (if any) runs; a fallback
// failure surfaces both causes as a FallbackError.
func (b *Breaker) Execute(ctx context.Context, call Call) (any, error) {
	if call.Run == nil {
		return nil, fmt.Errorf("%s: call has no Run function", call.Service)
	}

	if err := b.allow(call.Service); err != nil {
		return b.runFallback(ctx, call, err)
	}

	result, err := b.runWithTimeout(ctx, call)
	if err != nil {
		b.recordFailure(call.Service)
		return b.runFallback(ctx, call, err)
	}

	b.recordSuccess(call.Service)
	return result, nil
}

func (b *Breaker) runFallback(ctx context.Context, call Call, cause error) (any, error) {
	if call.Fallback == nil {
		return nil, cause
	}

	result, err := call.Fallback(ctx, cause)
	if err != nil {
		return nil, &FallbackError{Service: call.Service, Primary: cause, Fallback: err}
	}
	return result, nil
}

// runWithTimeout races the call against its deadline. The goroutine keeps
// running after a timeout; its late result is discarded via the buffered
// channel.
func (b *Breaker) runWithTimeout(ctx context.Context, call Call) (any, error) {
	timeout := call.Timeout
	if timeout <= 0 {
		timeout = b.config.CallTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := call.Run(ctx)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", call.Service, types.ErrCallTimeout)
		}
		return nil, ctx.Err()
	}
}

// allow decides whether a call may proceed, handling the open-to-half-open
// transition when the reset timeout has elapsed.
func (b *Breaker) allow(service string) error {
	b.mu.Lock()
	s := b.stateLocked(service)

	var transition func()
	switch s.state {
	case StateOpen:
		if time.Now().Before(s.nextAttemptTime) {
			b.mu.Unlock()
			return fmt.Errorf("%s: %w", service, types.ErrCircuitOpen)
		}
		transition = b.transitionLocked(service, s, StateHalfOpen)
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
	return nil
}

func (b *Breaker) recordSuccess(service string) {
	b.mu.Lock()
	s := b.stateLocked(service)
	b.rollWindowLocked(s)

	s.requestCount++
	var transition func()
	switch s.state {
	case StateHalfOpen:
		s.successes++
		if s.successes >= int64(b.config.SuccessThreshold) {
			s.failures = 0
			s.successes = 0
			transition = b.transitionLocked(service, s, StateClosed)
		}
	case StateClosed:
		s.failures = 0
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
}

func (b *Breaker) recordFailure(service string) {
	b.mu.Lock()
	s := b.stateLocked(service)
	b.rollWindowLocked(s)

	s.requestCount++
	s.failures++
	s.lastFailureTime = time.Now()

	var transition func()
	switch s.state {
	case StateHalfOpen:
		// One failed trial reopens immediately.
		s.successes = 0
		s.nextAttemptTime = time.Now().Add(b.config.ResetTimeout)
		transition = b.transitionLocked(service, s, StateOpen)
	case StateClosed:
		if s.failures >= int64(b.config.FailureThreshold) {
			s.nextAttemptTime = time.Now().Add(b.config.ResetTimeout)
			transition = b.transitionLocked(service, s, StateOpen)
		}
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
}

// rollWindowLocked resets the counters when the last failure has aged out
// of the monitoring window. The window is approximate: it is checked
// lazily at the next recorded outcome.
func (b *Breaker) rollWindowLocked(s *serviceState) {
	if b.config.MonitoringWindow <= 0 || s.lastFailureTime.IsZero() {
		return
	}
	if time.Since(s.lastFailureTime) > b.config.MonitoringWindow {
		s.failures = 0
		s.requestCount = 0
	}
}

// transitionLocked changes state and returns the deferred observer
// invocation, to be called after the lock is released.
func (b *Breaker) transitionLocked(service string, s *serviceState, to State) func() {
	from := s.state
	if from == to {
		return nil
	}
	s.state = to

	fn := b.onStateChange
	b.logger.Info("Circuit breaker state change",
		"service", service, "from", from.String(), "to", to.String())

	return func() {
		if b.metrics != nil {
			b.metrics.RecordBreakerStateChange(service, from.String(), to.String())
		}
		if fn != nil {
			fn(service, from, to)
		}
	}
}

func (b *Breaker) stateLocked(service string) *serviceState {
	s, ok := b.services[service]
	if !ok {
		s = &serviceState{state: StateClosed}
		b.services[service] = s
	}
	return s
}

// State returns the service's current state, transitioning open breakers
// whose reset timeout has elapsed the same way Execute would.
func (b *Breaker) State(service string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.services[service]
	if !ok {
		return StateClosed
	}
	if s.state == StateOpen && !time.Now().Before(s.nextAttemptTime) {
		return StateHalfOpen
	}
	return s.state
}

// Status returns a snapshot of one service's breaker.
func (b *Breaker) Status(service string) Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.services[service]
	if !ok {
		return Status{Service: service, State: StateClosed, HealthScore: 100}
	}
	return Status{
		Service:         service,
		State:           s.state,
		Failures:        s.failures,
		Successes:       s.successes,
		RequestCount:    s.requestCount,
		LastFailureTime: s.lastFailureTime,
		NextAttemptTime: s.nextAttemptTime,
		HealthScore:     healthScore(s),
	}
}

// HealthScores returns the 0-100 health score for every known service.
func (b *Breaker) HealthScores() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	scores := make(map[string]float64, len(b.services))
	for name, s := range b.services {
		scores[name] = healthScore(s)
	}
	return scores
}

// healthScore maps a service's counters to 0-100. With no recorded
// requests the service is presumed healthy. Open and half-open states cap
// the score so a recovering service cannot report full health.
func healthScore(s *serviceState) float64 {
	if s.requestCount == 0 {
		return 100
	}

	successRate := float64(s.requestCount-s.failures) / float64(s.requestCount)
	score := successRate * 100

	switch s.state {
	case StateOpen:
		score = math.Min(score*0.5, 25)
	case StateHalfOpen:
		score = math.Min(score*0.75, 50)
	}

	return math.Max(0, math.Min(100, score))
}

// Reset discards the service's breaker state entirely; the next call
// starts from a fresh closed breaker.
func (b *Breaker) Reset(service string) {
	b.mu.Lock()
	s, ok := b.services[service]
	var transition func()
	if ok {
		if s.state != StateClosed {
			transition = b.transitionLocked(service, s, StateClosed)
		}
		delete(b.services, service)
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
}

// ForceOpen trips the service's breaker for the given duration, or for
// the configured reset timeout when d is zero.
func (b *Breaker) ForceOpen(service string, d time.Duration) {
	if d <= 0 {
		d = b.config.ResetTimeout
	}

	b.mu.Lock()
	s := b.stateLocked(service)
	// Any trial progress from an interrupted half-open phase is void;
	// recovery starts over after the forced-open period.
	s.failures = 0
	s.successes = 0
	s.nextAttemptTime = time.Now().Add(d)
	transition := b.transitionLocked(service, s, StateOpen)
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
}
