// Package lifeline is the resilience layer for wellness-tracking
// services: a multi-tier cache and a per-service circuit breaker that
// keep reads fast and failures contained when downstream dependencies
// degrade.
//
// # Cache
//
// The cache manager coordinates three tiers: a bounded in-process memory
// tier, a shared Redis tier, and a client-durable local tier. Reads probe
// fastest-first and promote remote hits into memory; writes fan out to
// every enabled tier, with only the memory write guaranteed.
//
//	manager, err := lifeline.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.Close()
//
//	ctx := context.Background()
//	err = manager.Set(ctx, lifeline.Key("user", "123", "steps"), steps,
//	    lifeline.WithTTL(5*time.Minute),
//	    lifeline.WithTags("user:123"))
//
//	var cached DailySteps
//	err = manager.Get(ctx, lifeline.Key("user", "123", "steps"), &cached)
//
// Cache-aside loading with stampede protection:
//
//	var profile Profile
//	err := manager.GetOrSet(ctx, "profile:123", &profile,
//	    func(ctx context.Context) (any, error) {
//	        return fetchProfile(ctx, "123")
//	    })
//
// Invalidate everything written for a user after new data syncs:
//
//	removed, err := manager.InvalidateByTags(ctx, []string{"user:123"})
//
// # Circuit breaker
//
// Each downstream service gets an independent breaker keyed by name.
// Calls race a timeout; failures past the threshold open the circuit and
// subsequent calls fail fast (or take the fallback) until the reset
// timeout elapses and trial calls probe recovery.
//
//	cb := lifeline.NewBreaker(lifeline.TestConfig().Breaker)
//	result, err := cb.Execute(ctx, lifeline.Call{
//	    Service: "sleep-api",
//	    Run: func(ctx context.Context) (any, error) {
//	        return sleepClient.Fetch(ctx, userID)
//	    },
//	    Fallback: func(ctx context.Context, cause error) (any, error) {
//	        var stale SleepSummary
//	        if err := manager.Get(ctx, key, &stale); err != nil {
//	            return nil, err
//	        }
//	        return stale, nil
//	    },
//	})
//
// # Thread safety
//
// All operations on the cache manager and breaker are safe for
// concurrent use.
package lifeline
