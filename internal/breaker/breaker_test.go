package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wellfolk/lifeline/internal/config"
	"github.com/wellfolk/lifeline/internal/types"
)

func testConfig() config.BreakerConfig {
	return config.BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		ResetTimeout:     50 * time.Millisecond,
		CallTimeout:      time.Second,
		MonitoringWindow: time.Minute,
	}
}

func succeed(ctx context.Context) (any, error) { return "ok", nil }

func fail(ctx context.Context) (any, error) { return nil, errors.New("downstream down") }

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExecuteClosedSuccess(t *testing.T) {
	b := New(testConfig(), nil, nil)

	result, err := b.Execute(context.Background(), Call{Service: "steps-api", Run: succeed})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v, want ok", result)
	}
	if got := b.State("steps-api"); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestOpensAtFailureThreshold(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: fail}); err == nil {
			t.Fatal("expected failure")
		}
		if got := b.State("steps-api"); got != StateClosed {
			t.Fatalf("state after %d failures = %v, want closed", i+1, got)
		}
	}

	// Third failure reaches the threshold.
	if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: fail}); err == nil {
		t.Fatal("expected failure")
	}
	if got := b.State("steps-api"); got != StateOpen {
		t.Errorf("state = %v, want open", got)
	}
}

func TestClosedSuccessResetsFailures(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	// Two failures, a success, then a third failure: the success wipes
	// the count, so the service never reaches the threshold of three.
	b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
	b.Execute(ctx, Call{Service: "steps-api", Run: fail})

	if got := b.State("steps-api"); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
	if got := b.Status("steps-api").Failures; got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
}

func TestOpenFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.ResetTimeout = time.Minute
	b := New(cfg, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	}

	called := false
	_, err := b.Execute(ctx, Call{
		Service: "steps-api",
		Run: func(ctx context.Context) (any, error) {
			called = true
			return nil, nil
		},
	})
	if !errors.Is(err, types.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("primary ran while breaker was open")
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	}

	time.Sleep(60 * time.Millisecond)

	// SuccessThreshold is 2: two trial successes close the breaker.
	for i := 0; i < 2; i++ {
		if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed}); err != nil {
			t.Fatalf("trial call %d failed: %v", i+1, err)
		}
	}
	if got := b.State("steps-api"); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: fail}); err == nil {
		t.Fatal("expected failure")
	}
	if got := b.Status("steps-api").State; got != StateOpen {
		t.Errorf("state = %v, want open", got)
	}

	// Immediately after reopening, calls fail fast again.
	_, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
	if !errors.Is(err, types.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
}

func TestFallback(t *testing.T) {
	t.Run("fallback on primary failure", func(t *testing.T) {
		b := New(testConfig(), nil, nil)

		result, err := b.Execute(context.Background(), Call{
			Service: "sleep-api",
			Run:     fail,
			Fallback: func(ctx context.Context, cause error) (any, error) {
				if cause == nil {
					t.Error("fallback cause is nil")
				}
				return "stale", nil
			},
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if result != "stale" {
			t.Errorf("result = %v, want stale", result)
		}
	})

	t.Run("fallback on open breaker", func(t *testing.T) {
		cfg := testConfig()
		cfg.ResetTimeout = time.Minute
		b := New(cfg, nil, nil)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			b.Execute(ctx, Call{Service: "sleep-api", Run: fail})
		}

		result, err := b.Execute(ctx, Call{
			Service: "sleep-api",
			Run:     succeed,
			Fallback: func(ctx context.Context, cause error) (any, error) {
				if !errors.Is(cause, types.ErrCircuitOpen) {
					t.Errorf("cause = %v, want ErrCircuitOpen", cause)
				}
				return "stale", nil
			},
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if result != "stale" {
			t.Errorf("result = %v, want stale", result)
		}
	})

	t.Run("both fail", func(t *testing.T) {
		b := New(testConfig(), nil, nil)
		fallbackErr := errors.New("cache empty")

		_, err := b.Execute(context.Background(), Call{
			Service: "sleep-api",
			Run:     fail,
			Fallback: func(ctx context.Context, cause error) (any, error) {
				return nil, fallbackErr
			},
		})

		var fbErr *FallbackError
		if !errors.As(err, &fbErr) {
			t.Fatalf("error = %v, want *FallbackError", err)
		}
		if fbErr.Service != "sleep-api" {
			t.Errorf("Service = %v, want sleep-api", fbErr.Service)
		}
		if !errors.Is(err, fallbackErr) {
			t.Error("errors.Is should match the fallback cause")
		}
	})
}

func TestCallTimeout(t *testing.T) {
	b := New(testConfig(), nil, nil)

	_, err := b.Execute(context.Background(), Call{
		Service: "slow-api",
		Timeout: 20 * time.Millisecond,
		Run: func(ctx context.Context) (any, error) {
			time.Sleep(200 * time.Millisecond)
			return "late", nil
		},
	})
	if !errors.Is(err, types.ErrCallTimeout) {
		t.Fatalf("error = %v, want ErrCallTimeout", err)
	}

	// The timeout counts as a failure.
	if got := b.Status("slow-api").Failures; got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
}

func TestHealthScore(t *testing.T) {
	t.Run("no requests is fully healthy", func(t *testing.T) {
		b := New(testConfig(), nil, nil)
		if got := b.Status("unused").HealthScore; got != 100 {
			t.Errorf("score = %v, want 100", got)
		}
	})

	t.Run("tracks success rate when closed", func(t *testing.T) {
		b := New(testConfig(), nil, nil)
		ctx := context.Background()

		for i := 0; i < 9; i++ {
			b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
		}
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})

		if got := b.Status("steps-api").HealthScore; got != 90 {
			t.Errorf("score = %v, want 90", got)
		}
	})

	t.Run("open caps at 25", func(t *testing.T) {
		cfg := testConfig()
		cfg.ResetTimeout = time.Minute
		b := New(cfg, nil, nil)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			b.Execute(ctx, Call{Service: "steps-api", Run: fail})
		}

		if got := b.Status("steps-api").HealthScore; got > 25 {
			t.Errorf("score = %v, want <= 25", got)
		}
	})

	t.Run("bounds hold under mixed traffic", func(t *testing.T) {
		b := New(testConfig(), nil, nil)
		ctx := context.Background()

		for i := 0; i < 50; i++ {
			if i%3 == 0 {
				b.Execute(ctx, Call{Service: "steps-api", Run: fail})
			} else {
				b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
			}
			score := b.Status("steps-api").HealthScore
			if score < 0 || score > 100 {
				t.Fatalf("score %v out of [0,100] after %d calls", score, i+1)
			}
		}
	})
}

func TestHealthScores(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
	b.Execute(ctx, Call{Service: "sleep-api", Run: fail})

	scores := b.HealthScores()
	if len(scores) != 2 {
		t.Fatalf("len(scores) = %d, want 2", len(scores))
	}
	if scores["steps-api"] != 100 {
		t.Errorf("steps-api score = %v, want 100", scores["steps-api"])
	}
	if scores["sleep-api"] != 0 {
		t.Errorf("sleep-api score = %v, want 0", scores["sleep-api"])
	}
}

func TestMonitoringWindowRollover(t *testing.T) {
	cfg := testConfig()
	cfg.MonitoringWindow = 30 * time.Millisecond
	b := New(cfg, nil, nil)
	ctx := context.Background()

	// Two failures, below the threshold of three.
	b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	b.Execute(ctx, Call{Service: "steps-api", Run: fail})

	time.Sleep(40 * time.Millisecond)

	// The window has elapsed, so this failure starts a fresh count and
	// must not trip the breaker.
	b.Execute(ctx, Call{Service: "steps-api", Run: fail})

	if got := b.State("steps-api"); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
	if got := b.Status("steps-api").Failures; got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
}

func TestReset(t *testing.T) {
	cfg := testConfig()
	cfg.ResetTimeout = time.Minute
	b := New(cfg, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	}
	if got := b.State("steps-api"); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	b.Reset("steps-api")

	if got := b.State("steps-api"); got != StateClosed {
		t.Errorf("state after reset = %v, want closed", got)
	}
	if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed}); err != nil {
		t.Errorf("call after reset failed: %v", err)
	}
}

func TestForceOpen(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	b.ForceOpen("steps-api", time.Minute)

	_, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
	if !errors.Is(err, types.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
}

func TestForceOpenClearsTrialProgress(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	}
	time.Sleep(60 * time.Millisecond)

	// One of the two required trial successes lands before the breaker
	// is tripped by hand mid-recovery.
	if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed}); err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	b.ForceOpen("steps-api", 30*time.Millisecond)

	time.Sleep(40 * time.Millisecond)

	// Recovery starts over: a single success must not close the breaker.
	if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed}); err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	if got := b.State("steps-api"); got != StateHalfOpen {
		t.Errorf("state = %v, want half-open", got)
	}
}

func TestOnStateChange(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var transitions []string
	b.SetOnStateChange(func(service string, from, to State) {
		mu.Lock()
		transitions = append(transitions, from.String()+"->"+to.String())
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: fail})
	}
	time.Sleep(60 * time.Millisecond)
	for i := 0; i < 2; i++ {
		b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestServicesAreIndependent(t *testing.T) {
	cfg := testConfig()
	cfg.ResetTimeout = time.Minute
	b := New(cfg, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Execute(ctx, Call{Service: "sleep-api", Run: fail})
	}

	if got := b.State("sleep-api"); got != StateOpen {
		t.Errorf("sleep-api state = %v, want open", got)
	}
	if _, err := b.Execute(ctx, Call{Service: "steps-api", Run: succeed}); err != nil {
		t.Errorf("steps-api call failed: %v", err)
	}
}

func TestConcurrentExecute(t *testing.T) {
	b := New(testConfig(), nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				b.Execute(ctx, Call{Service: "steps-api", Run: succeed})
			} else {
				b.Execute(ctx, Call{Service: "steps-api", Run: fail})
			}
		}(i)
	}
	wg.Wait()

	status := b.Status("steps-api")
	if status.RequestCount > 50 {
		t.Errorf("requestCount = %d, want <= 50", status.RequestCount)
	}
	score := status.HealthScore
	if score < 0 || score > 100 {
		t.Errorf("score %v out of [0,100]", score)
	}
}
