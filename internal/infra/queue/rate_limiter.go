package queue

import (
	"sync"
	"time"

	"chinese-translation-service/internal/infra/metrics"
)

// RateLimiter enforces a minimum wall-clock spacing between successive
// provider calls, shared across every worker. Enforcement is strictly
// last-call-relative: the lock is held through the sleep, so concurrent
// callers serialize and each departs at least minDelay after the previous
// permitted call started. No burst capacity, no fairness beyond lock
// acquisition order.
type RateLimiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	last     time.Time
}

func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	if minDelay <= 0 {
		minDelay = 500 * time.Millisecond
	}
	return &RateLimiter{minDelay: minDelay}
}

// Wait blocks until the rate limit allows the next call, then records the
// new call's start time. Consumes the calling goroutine for the duration
// of the sleep.
func (r *RateLimiter) Wait() {
	start := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() {
		if elapsed := time.Since(r.last); elapsed < r.minDelay {
			time.Sleep(r.minDelay - elapsed)
		}
	}
	r.last = time.Now()

	metrics.ObserveRateLimiterWait(float64(time.Since(start)) / float64(time.Millisecond))
}
