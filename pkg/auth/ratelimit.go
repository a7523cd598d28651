package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRequests is returned by a RateLimiter when a subject exceeds
// its allowance.
var ErrTooManyRequests = errors.New("rate limit exceeded")

// RateLimiter checks whether a request from the given subject should be
// allowed.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) error
}

// InProcessLimiter is a simple sliding-window rate limiter that tracks
// request counts per subject in memory.
type InProcessLimiter struct {
	rpm      int
	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a rate limiter allowing rpm requests per
// subject per minute. A non-positive rpm disables limiting.
func NewInProcessLimiter(rpm int) *InProcessLimiter {
	return &InProcessLimiter{
		rpm:      rpm,
		counters: make(map[string]*counter),
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, subject string) error {
	if l.rpm <= 0 {
		return nil // no limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[subject]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		// New window.
		l.counters[subject] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.rpm {
		return ErrTooManyRequests
	}

	return nil
}
