package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeClock records requested sleeps and advances time by them.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) install(l *Limiter) {
	l.now = func() time.Time { return c.now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return ctx.Err()
	}
}

func TestLimiter_NoBlockWhenZeroRPS(t *testing.T) {
	limiter := NewLimiter(0, 0.5)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(context.Background(), "example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Errorf("limiter with 0 RPS should not block")
	}
}

func TestLimiter_SpacesSameHost(t *testing.T) {
	limiter := NewLimiter(10, 0) // 100ms interval
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(limiter)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "a.example"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(clock.sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %v", clock.sleeps)
	}
	for _, d := range clock.sleeps {
		if d != 100*time.Millisecond {
			t.Errorf("expected 100ms sleep, got %v", d)
		}
	}
}

func TestLimiter_HostsIndependent(t *testing.T) {
	limiter := NewLimiter(1, 0)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(limiter)

	ctx := context.Background()
	_ = limiter.Wait(ctx, "a.example")
	_ = limiter.Wait(ctx, "b.example")

	if len(clock.sleeps) != 0 {
		t.Errorf("expected no sleeps across different hosts, got %v", clock.sleeps)
	}
}

func TestLimiter_Jitter(t *testing.T) {
	limiter := NewLimiter(10, 0.5)
	clock := &fakeClock{now: time.Unix(0, 0)}
	clock.install(limiter)

	ctx := context.Background()
	_ = limiter.Wait(ctx, "a.example")
	_ = limiter.Wait(ctx, "a.example")

	if len(clock.sleeps) != 1 {
		t.Fatalf("expected 1 sleep, got %v", clock.sleeps)
	}
	if d := clock.sleeps[0]; d < 100*time.Millisecond || d > 150*time.Millisecond {
		t.Errorf("expected jittered wait in [100ms, 150ms], got %v", d)
	}
}

func TestLimiter_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = limiter.Wait(context.Background(), "a.example")
	if err := limiter.Wait(ctx, "a.example"); err == nil {
		t.Fatal("expected context canceled error")
	}
}
