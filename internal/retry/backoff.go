package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes exponentially growing delays with optional jitter.
type Backoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxAttempts  int     // retries after the first attempt; negative retries forever
	jitter       float64 // 0.1 spreads each delay by +/- 10%
	random       func() float64
}

// BackoffOption configures a Backoff.
type BackoffOption func(*Backoff)

func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *Backoff) { b.initialDelay = d }
}

func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *Backoff) { b.maxDelay = d }
}

func WithMultiplier(m float64) BackoffOption {
	return func(b *Backoff) { b.multiplier = m }
}

// WithJitter sets the jitter factor in [0, 1].
func WithJitter(j float64) BackoffOption {
	return func(b *Backoff) { b.jitter = j }
}

// WithRandom replaces the jitter source; f must return values in [0, 1).
func WithRandom(f func() float64) BackoffOption {
	return func(b *Backoff) { b.random = f }
}

// NewBackoff creates a backoff allowing maxAttempts retries, starting at
// 200ms, doubling, capped at 5s, with 10% jitter.
func NewBackoff(maxAttempts int, opts ...BackoffOption) *Backoff {
	b := &Backoff{
		initialDelay: 200 * time.Millisecond,
		maxDelay:     5 * time.Second,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
		random:       rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Delay returns the wait before retry number attempt (0-based).
func (b *Backoff) Delay(attempt int) time.Duration {
	d := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if d > float64(b.maxDelay) {
		d = float64(b.maxDelay)
	}
	if b.jitter > 0 {
		d *= 1 + b.jitter*(b.random()*2-1)
	}
	return time.Duration(d)
}

// MaxAttempts returns the number of retries allowed after the first attempt.
func (b *Backoff) MaxAttempts() int {
	return b.maxAttempts
}
