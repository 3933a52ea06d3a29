// Package health runs periodic background checks against external
// dependencies and reports health-state transitions.
//
// Each registered check runs in its own background goroutine at a
// configurable interval. Checks use failure/success thresholds (inspired by
// Kubernetes probe configuration) to avoid flapping: a check must fail
// consecutively failureThreshold times before being marked unhealthy, and
// succeed successThreshold times before being marked healthy again.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc is a health check function. It should return nil if the checked
// component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// TransitionFunc is invoked when a check flips between healthy and unhealthy.
// err is the error that caused an unhealthy flip, or nil on recovery.
type TransitionFunc func(name string, healthy bool, err error)

// checkConfig holds the configuration and runtime state for a single check.
//
// Concurrency model: run() is called from exactly one goroutine (the ticker).
// The counters (consecutiveFails, consecutiveOK) are only accessed by run(),
// so they need no synchronization. The healthy flag and lastErr are read by
// Healthy/Failures from arbitrary goroutines, so they use atomic operations.
type checkConfig struct {
	name             string
	timeout          time.Duration
	check            CheckFunc
	failureThreshold int
	successThreshold int
	onTransition     TransitionFunc

	// healthy is read by observers (atomic load) and written by run() (atomic store).
	healthy atomic.Bool

	// lastErr stores the most recent error from run(). Read by observers via
	// atomic load; written by run() via atomic store.
	lastErr atomic.Pointer[error]

	// counters are only accessed from the single run() goroutine.
	consecutiveFails int
	consecutiveOK    int
}

// isHealthy returns the current health status of this check.
func (c *checkConfig) isHealthy() bool {
	return c.healthy.Load()
}

// getLastError returns the most recent error from this check, or nil.
func (c *checkConfig) getLastError() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// run executes the check once and updates thresholds accordingly.
// Must be called from a single goroutine.
func (c *checkConfig) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.check(checkCtx)
	c.lastErr.Store(&err)

	was := c.healthy.Load()

	if err != nil {
		c.consecutiveOK = 0
		c.consecutiveFails++
		if c.consecutiveFails >= c.failureThreshold {
			c.healthy.Store(false)
		}
	} else {
		c.consecutiveFails = 0
		c.consecutiveOK++
		if c.consecutiveOK >= c.successThreshold {
			c.healthy.Store(true)
		}
	}

	if now := c.healthy.Load(); now != was && c.onTransition != nil {
		c.onTransition(c.name, now, err)
	}
}

// Health manages a set of background checks.
type Health struct {
	// mu protects the check slice, hook, and cancel. Only held during
	// registration (before Start) and in Start/Stop. Observers snapshot the
	// slice under RLock then release immediately.
	mu           sync.RWMutex
	checks       []*checkConfig
	onTransition TransitionFunc
	cancel       context.CancelFunc
}

// New creates a new Health instance with no checks registered.
func New() *Health {
	return &Health{}
}

// OnTransition registers a hook invoked whenever any check flips state.
// It must be called before Start.
func (h *Health) OnTransition(fn TransitionFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTransition = fn
}

// AddCheck registers a check. Checks start out healthy until proven
// otherwise; three consecutive failures mark a check unhealthy, one success
// marks it healthy again.
func (h *Health) AddCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &checkConfig{
		name:             name,
		timeout:          timeout,
		check:            check,
		failureThreshold: 3,
		successThreshold: 1,
	}
	c.healthy.Store(true)
	h.checks = append(h.checks, c)
}

// Start begins running all registered checks in background goroutines at the
// given interval. Typically Start is called once after all checks are
// registered.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := make([]*checkConfig, len(h.checks))
	copy(checks, h.checks)
	for _, c := range checks {
		c.onTransition = h.onTransition
	}
	h.mu.Unlock()

	for _, c := range checks {
		go runCheck(ctx, c, interval)
	}
}

// runCheck periodically executes a single check until the context is cancelled.
func runCheck(ctx context.Context, c *checkConfig, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start.
	c.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

// Healthy reports whether every registered check is currently passing.
func (h *Health) Healthy() bool {
	h.mu.RLock()
	checks := h.checks
	h.mu.RUnlock()

	for _, c := range checks {
		if !c.isHealthy() {
			return false
		}
	}
	return true
}

// Failures returns a map of check name to error message for every check that
// is currently unhealthy. It uses the stored last error from run() rather
// than re-executing the check function.
func (h *Health) Failures() map[string]string {
	h.mu.RLock()
	checks := make([]*checkConfig, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	failures := make(map[string]string)
	for _, c := range checks {
		if !c.isHealthy() {
			if err := c.getLastError(); err != nil {
				failures[c.name] = err.Error()
			} else {
				failures[c.name] = "unhealthy"
			}
		}
	}
	return failures
}

// Stop cancels all background check goroutines. It is safe to call Stop
// multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
