// Package ratelimit spaces out requests to the same host so article
// downloads stay polite even when a search returns many links from one
// publisher.
package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between requests per host, with
// optional positive jitter. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   float64
	next     map[string]time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewLimiter allows rps requests per second to each host. rps <= 0 gives a
// limiter that never blocks. jitter in [0, 1] adds up to jitter*interval of
// random extra delay.
func NewLimiter(rps float64, jitter float64) *Limiter {
	l := &Limiter{
		next:  make(map[string]time.Time),
		now:   time.Now,
		sleep: sleepCtx,
	}
	if rps <= 0 {
		return l
	}
	l.interval = time.Duration(float64(time.Second) / rps)
	l.jitter = min(max(jitter, 0), 1)
	return l
}

// Wait blocks until a request to host may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, host string) error {
	if l.interval == 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := l.now()
	slot := l.next[host]
	if slot.Before(now) {
		slot = now
	}
	gap := l.interval
	if l.jitter > 0 {
		gap += time.Duration(rand.Float64() * l.jitter * float64(l.interval))
	}
	l.next[host] = slot.Add(gap)
	l.mu.Unlock()

	if d := slot.Sub(now); d > 0 {
		return l.sleep(ctx, d)
	}
	return ctx.Err()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
