package remote

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket guarding outbound calls so a drain of a
// large queue doesn't hammer the service. Tokens refill continuously at
// rate per second up to burst.
type RateLimiter struct {
	mu       sync.Mutex
	rate     float64
	burst    float64
	tokens   float64
	lastFill time.Time
	now      func() time.Time
}

// NewRateLimiter creates a bucket that starts full.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:     ratePerSecond,
		burst:    float64(burst),
		tokens:   float64(burst),
		lastFill: time.Now(),
		now:      time.Now,
	}
}

func (l *RateLimiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastFill).Seconds()
	l.lastFill = now
	l.tokens += elapsed * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
}

// Wait blocks until a token is available or the context ends.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		deficit := 1 - l.tokens
		wait := time.Duration(deficit / l.rate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Allow reports whether a token is available right now, consuming one if so.
func (l *RateLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}
