package shopify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// The platform grants 40 REST requests per credential per minute.
	defaultCapacity = 40
	defaultWindow   = 60 * time.Second

	// Remaining budget below which we stop dispatching and wait for the
	// window to reset instead of draining the bucket to zero.
	defaultLowWater = 5
)

type bucket struct {
	remaining int
	resetAt   time.Time
}

// RateLimiter governs outbound request pacing per shop. Each client owns
// its own instance; budgets for different shops never interact and nothing
// is persisted beyond the life of the limiter.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	lowWater int
	window   time.Duration
	logger   zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter with the platform's default budget.
func NewRateLimiter(logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: defaultCapacity,
		lowWater: defaultLowWater,
		window:   defaultWindow,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Acquire consumes one unit of the shop's request budget, suspending the
// caller until the window resets when the budget runs low. It returns early
// only when ctx is cancelled.
func (l *RateLimiter) Acquire(ctx context.Context, shop string) error {
	for {
		l.mu.Lock()
		b, ok := l.buckets[shop]
		if !ok {
			b = &bucket{remaining: l.capacity, resetAt: l.now().Add(l.window)}
			l.buckets[shop] = b
		}

		now := l.now()
		if !now.Before(b.resetAt) {
			b.remaining = l.capacity
			b.resetAt = now.Add(l.window)
		}

		if b.remaining >= l.lowWater {
			b.remaining--
			l.mu.Unlock()
			return nil
		}

		wait := b.resetAt.Sub(now)
		l.mu.Unlock()

		l.logger.Debug().
			Str("shop", shop).
			Dur("wait", wait).
			Msg("Request budget low, waiting for window reset")

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining reports the shop's current budget without consuming it.
func (l *RateLimiter) Remaining(shop string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[shop]
	if !ok {
		return l.capacity
	}
	if !l.now().Before(b.resetAt) {
		return l.capacity
	}
	return b.remaining
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
