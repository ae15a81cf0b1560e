package breaker

import "time"

// State is the position of one service's breaker.
type State int

const (
	// StateClosed lets calls through and counts failures.
	StateClosed State = iota
	// StateOpen fails fast until the reset timeout elapses.
	StateOpen
	// StateHalfOpen lets trial calls through to probe recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of one service's breaker.
type Status struct {
	Service         string    `json:"service"`
	State           State     `json:"state"`
	Failures        int64     `json:"failures"`
	Successes       int64     `json:"successes"`
	RequestCount    int64     `json:"requestCount"`
	LastFailureTime time.Time `json:"lastFailureTime"`
	NextAttemptTime time.Time `json:"nextAttemptTime"`
	HealthScore     float64   `json:"healthScore"`
}
