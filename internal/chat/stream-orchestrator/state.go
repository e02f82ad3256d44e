package streamorchestrator

import (
	"math/rand/v2"
	"time"
)

type State string

const (
	StatePreparing   State = "preparing"
	StateStreaming   State = "streaming"
	StateCompleted   State = "completed"
	StateRateLimited State = "rate_limited"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRateLimited || s == StateFailed
}

// Clock abstracts the backoff sleep.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// JitterFunc returns a random offset in [0, max).
type JitterFunc func(max time.Duration) time.Duration

func RandomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}

// RetryState belongs to a single request.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	BaseDelay   time.Duration
	// Emitted counts bytes already forwarded to the caller across attempts.
	// They are never revoked.
	Emitted int
}

func (r *RetryState) HasAttemptsLeft() bool {
	return r.Attempt+1 < r.MaxAttempts
}

// Backoff is base * 2^attempt plus jitter, where attempt is the zero-based
// index of the attempt that just failed.
func (r *RetryState) Backoff(maxJitter time.Duration, jitter JitterFunc) time.Duration {
	delay := r.BaseDelay << uint(r.Attempt)
	if jitter != nil {
		delay += jitter(maxJitter)
	}
	return delay
}
