package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by Allow when the sliding window is full.
// Callers match it with errors.Is.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter enforces at most max calls per trailing period. State lives in
// the limiter instance, owned by whoever wires the fetch pipeline, and a
// mutex guards the prune-check-record sequence so concurrent invocations
// cannot exceed the cap.
type Limiter struct {
	mu     sync.Mutex
	max    int
	period time.Duration
	now    func() time.Time
	calls  []time.Time
}

func NewLimiter(max int, period time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		period: period,
		now:    time.Now,
	}
}

// Allow prunes entries older than the period, then either rejects the
// attempt or records it. A rejected attempt leaves the window untouched,
// so hammering a full limiter does not extend the lockout.
func (l *Limiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.period)

	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept

	if len(l.calls) >= l.max {
		return fmt.Errorf("%w: maximum %d requests per %s", ErrRateLimited, l.max, l.period)
	}

	l.calls = append(l.calls, now)
	return nil
}
