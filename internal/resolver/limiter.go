package resolver

import (
	"sync"
	"time"
)

// Limiter enforces a minimum spacing between remote calls. Wait blocks
// without regard to context cancellation: AniList rate budgets are
// shared across tools, so an interrupted run must not burn spacing the
// next call depends on.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewLimiter creates a limiter with the given minimum inter-call
// spacing. A non-positive interval disables waiting.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until the spacing since the previous permitted call has
// elapsed, then reserves the next slot. The first call never waits.
func (l *Limiter) Wait() {
	if l.interval <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if wait := l.next.Sub(now); wait > 0 {
		l.sleep(wait)
		// Spacing is measured from the actual wake time, so an
		// oversleep never compresses the following interval.
		now = l.now()
	}
	l.next = now.Add(l.interval)
}
