// Package retry runs an operation until it succeeds, a non-retryable error
// comes back, or the attempt or time budget of a Policy runs out.
package retry

import (
	"context"
	"errors"
	"time"
)

// Backoff returns the wait before retry n, where n starts at 0.
type Backoff func(n int) time.Duration

// Constant waits d between attempts.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Clock abstracts time so callers can drive the loop deterministically.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time                         { return time.Now() }
func (wallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the wall clock.
func RealClock() Clock {
	return wallClock{}
}

// Policy describes one retry loop. The zero value makes a single attempt.
type Policy struct {
	Attempts  int           // upper bound on calls, 0 means no bound when Budget is set
	Budget    time.Duration // no new attempt starts once this much time has passed
	Backoff   Backoff       // defaults to Constant(time.Second)
	Retryable func(error) bool
	Clock     Clock
}

// Do calls fn until it succeeds or the policy gives up, returning the last
// error. Cancellation of ctx wins over everything else.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	clock := p.Clock
	if clock == nil {
		clock = wallClock{}
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Constant(time.Second)
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = Transient
	}
	attempts := p.Attempts
	if attempts <= 0 && p.Budget <= 0 {
		attempts = 1
	}

	start := clock.Now()
	var lastErr error
	for n := 0; attempts <= 0 || n < attempts; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Budget > 0 && n > 0 && clock.Now().Sub(start) >= p.Budget {
			return lastErr
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || n+1 == attempts {
			return lastErr
		}

		if wait := backoff(n); wait > 0 {
			select {
			case <-clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

// Transient reports whether err is worth another attempt: anything except
// cancellation or an expired deadline.
func Transient(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
