// Package ratelimit provides a fixed-delay limiter for polite sequential
// fetching against a single origin. The limiter is an explicit value threaded
// through the call chain, with injectable time so tests can simulate delays
// without real sleeping.
package ratelimit

import (
	"context"
	"time"
)

// Limiter enforces a minimum delay between consecutive Wait calls.
// Not safe for concurrent use; the pipeline enriches descriptions strictly
// sequentially, which is the point.
type Limiter struct {
	delay time.Duration
	last  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFixedDelay returns a Limiter enforcing delay between calls.
// A non-positive delay disables waiting.
func NewFixedDelay(delay time.Duration) *Limiter {
	return &Limiter{
		delay: delay,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// SetClock injects the time source and sleeper. Test hook.
func (l *Limiter) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	l.now = now
	l.sleep = sleep
}

// Wait blocks until at least the configured delay has elapsed since the
// previous call. The first call never waits. Returns early with the context
// error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}

	current := l.now()
	if !l.last.IsZero() {
		if remaining := l.delay - current.Sub(l.last); remaining > 0 {
			if err := l.sleep(ctx, remaining); err != nil {
				return err
			}
			current = l.now()
		}
	}
	l.last = current
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
