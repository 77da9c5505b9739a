package retry

import (
	"context"
	"time"
)

// Executor runs an operation until it succeeds, fails permanently, or
// runs out of retries.
type Executor struct {
	isTransient func(error) bool
	backoff     *Backoff
	onRetry     func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates an executor. Panics if either argument is nil.
func NewExecutor(isTransient func(error) bool, backoff *Backoff) *Executor {
	if isTransient == nil {
		panic("isTransient cannot be nil")
	}
	if backoff == nil {
		panic("backoff cannot be nil")
	}
	return &Executor{isTransient: isTransient, backoff: backoff}
}

// WithOnRetry returns a copy of e that calls fn before each wait.
func (e *Executor) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = fn
	return &clone
}

// Execute runs op and returns the error of the last attempt, or the
// context error if ctx ends while waiting.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	for attempt := 0; err != nil && e.isTransient(err); attempt++ {
		if limit := e.backoff.MaxAttempts(); limit >= 0 && attempt >= limit {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.backoff.Delay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = op(ctx)
	}
	return err
}
