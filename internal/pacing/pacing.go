// Package pacing provides the rate limiter injected into the scrape gateway
// and the clock abstraction used for settle delays.
package pacing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock supplies time and sleeps. Tests substitute a ManualClock.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Limiter is a token bucket that allows perInterval calls per interval.
// With perInterval equal to the worker count, N workers each pausing once per
// call yield N calls per interval, the same throughput as a fixed per-call delay.
type Limiter struct {
	lim   *rate.Limiter
	clock Clock
}

// NewLimiter creates a limiter. A non-positive interval disables pacing.
func NewLimiter(interval time.Duration, perInterval int, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if perInterval < 1 {
		perInterval = 1
	}
	if interval <= 0 {
		return &Limiter{lim: rate.NewLimiter(rate.Inf, perInterval), clock: clock}
	}
	every := rate.Every(interval / time.Duration(perInterval))
	return &Limiter{lim: rate.NewLimiter(every, perInterval), clock: clock}
}

// Wait blocks until the next call is allowed.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	now := l.clock.Now()
	r := l.lim.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("pacing: reservation exceeds burst")
	}
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(now)
		return err
	}
	return nil
}

// ManualClock is a Clock whose time only moves when Sleep or Advance is called.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewManualClock starts a manual clock at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep records d and advances the clock without blocking.
func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleeps returns a copy of every recorded sleep.
func (c *ManualClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
