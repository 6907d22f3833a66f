// Package resilience guards outbound calls with a two-state circuit breaker
// and provides the exponential backoff used between retries.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen indicates the circuit breaker is open and the call was rejected
// without being attempted.
var ErrOpen = errors.New("circuit breaker open")

// State represents the state of the circuit breaker. There are exactly two:
// Closed (calls pass through) and Open (calls rejected immediately). The
// breaker returns to Closed unconditionally once the reset window has elapsed
// since the last failure; there is no half-open probing.
type State int

const (
	StateClosed State = iota
	StateOpen
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before the breaker opens
	ResetWindow      time.Duration // time since the last failure after which calls flow again
}

// Breaker is a consecutive-failure counter with a reset window. All state is
// owned by the instance and guarded by a mutex, so one Breaker may be shared
// across request goroutines.
type Breaker struct {
	mu          sync.Mutex
	name        string
	threshold   int
	window      time.Duration
	failures    int
	lastFailure time.Time

	now func() time.Time // swapped in tests
}

// NewBreaker creates a breaker, applying defaults for unset fields
// (threshold 5, window 60s).
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetWindow <= 0 {
		cfg.ResetWindow = 60 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "breaker"
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.FailureThreshold,
		window:    cfg.ResetWindow,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. While the failure count is at or
// above the threshold and the reset window has not elapsed it returns ErrOpen.
// Once the window elapses the counter resets to zero and calls are allowed
// again regardless of whether the next one will succeed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return nil
	}
	if b.now().Sub(b.lastFailure) < b.window {
		return ErrOpen
	}

	slog.Info("circuit breaker closed",
		"name", b.name,
		"idle", b.now().Sub(b.lastFailure))
	b.failures = 0
	return nil
}

// Success resets the consecutive-failure counter.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// Failure records a failed call and opens the breaker when the count
// reaches the threshold.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()
	if b.failures == b.threshold {
		slog.Warn("circuit breaker opened",
			"name", b.name,
			"failures", b.failures,
			"reset_window", b.window)
	}
}

// State returns the current state without mutating the breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures >= b.threshold && b.now().Sub(b.lastFailure) < b.window {
		return StateOpen
	}
	return StateClosed
}

// Backoff returns the delay before retry number attempt: 2^attempt seconds.
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// Sleep waits for d or until ctx is done, returning the context error in the
// latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
