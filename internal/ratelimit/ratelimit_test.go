package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records requested sleeps and advances a virtual now.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func TestWaitFirstCallDoesNotSleep(t *testing.T) {
	clock := newFakeClock()
	l := NewFixedDelay(2 * time.Second)
	l.SetClock(clock.now, clock.sleep)

	require.NoError(t, l.Wait(context.Background()))
	assert.Empty(t, clock.slept)
}

func TestWaitEnforcesDelayBetweenCalls(t *testing.T) {
	clock := newFakeClock()
	l := NewFixedDelay(2 * time.Second)
	l.SetClock(clock.now, clock.sleep)

	require.NoError(t, l.Wait(context.Background()))

	// 500ms of work elapses; the limiter must wait the remaining 1.5s.
	clock.current = clock.current.Add(500 * time.Millisecond)
	require.NoError(t, l.Wait(context.Background()))

	require.Len(t, clock.slept, 1)
	assert.Equal(t, 1500*time.Millisecond, clock.slept[0])
}

func TestWaitSkipsSleepAfterLongGap(t *testing.T) {
	clock := newFakeClock()
	l := NewFixedDelay(time.Second)
	l.SetClock(clock.now, clock.sleep)

	require.NoError(t, l.Wait(context.Background()))
	clock.current = clock.current.Add(5 * time.Second)
	require.NoError(t, l.Wait(context.Background()))

	assert.Empty(t, clock.slept)
}

func TestWaitZeroDelayNeverSleeps(t *testing.T) {
	clock := newFakeClock()
	l := NewFixedDelay(0)
	l.SetClock(clock.now, clock.sleep)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Empty(t, clock.slept)
}

func TestWaitHonorsCancelledContext(t *testing.T) {
	l := NewFixedDelay(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
