package service

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// Remaining is the number of requests left in the client's bucket.
	Remaining int
	// ResetAt is when the bucket will be full again.
	ResetAt time.Time
	// RetryAfter is how long the client should wait before retrying.
	// Zero when Allowed is true.
	RetryAfter time.Duration
}

// RateLimiter throttles requests per client address using independent token
// buckets. Each address gets a bucket of the configured capacity that refills
// continuously at the configured rate; an address seen for the first time
// starts with a full bucket.
//
// Buckets for addresses idle longer than an hour are dropped by a background
// goroutine so the map does not grow without bound under address churn.
// Dropping an idle bucket is safe: a returning client simply starts full
// again, which only ever errs in the client's favor.
type RateLimiter struct {
	limiters sync.Map // map[string]*limiterEntry
	refill   rate.Limit
	burst    int

	stopOnce sync.Once
	stop     chan struct{}
}

// limiterEntry holds a rate limiter and last access time for cleanup.
type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// NewRateLimiter creates a RateLimiter with the given refill rate (tokens per
// second) and bucket capacity, and starts the stale-bucket cleanup goroutine.
// Call Close when done to stop it.
func NewRateLimiter(refillPerSec float64, capacity int) *RateLimiter {
	r := &RateLimiter{
		refill: rate.Limit(refillPerSec),
		burst:  capacity,
		stop:   make(chan struct{}),
	}

	go r.cleanupStale(5 * time.Minute)

	return r
}

// Allow checks whether a request from the given client address may proceed,
// consuming one token when it may.
func (r *RateLimiter) Allow(clientAddr string) Decision {
	limiter := r.getLimiter(clientAddr)

	if limiter.Allow() {
		remaining := int(math.Floor(limiter.Tokens()))
		return Decision{
			Allowed:   true,
			Remaining: remaining,
			ResetAt:   r.fullAt(remaining),
		}
	}

	// Probe the wait for the next token without consuming it.
	reservation := limiter.Reserve()
	retryAfter := reservation.Delay()
	reservation.Cancel()

	return Decision{
		Allowed:    false,
		Remaining:  0,
		ResetAt:    r.fullAt(0),
		RetryAfter: retryAfter,
	}
}

// fullAt estimates when a bucket holding the given number of tokens will be
// full again at the configured refill rate.
func (r *RateLimiter) fullAt(remaining int) time.Time {
	deficit := float64(r.burst - remaining)
	if deficit <= 0 || r.refill <= 0 {
		return time.Now()
	}
	return time.Now().Add(time.Duration(deficit / float64(r.refill) * float64(time.Second)))
}

// Close stops the cleanup goroutine.
func (r *RateLimiter) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

// getLimiter retrieves or creates the bucket for a client address.
func (r *RateLimiter) getLimiter(clientAddr string) *rate.Limiter {
	if val, ok := r.limiters.Load(clientAddr); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(r.refill, r.burst),
		lastAccess: time.Now(),
	}

	// Another goroutine may have stored an entry for the same address in the
	// meantime; LoadOrStore keeps the winner so both callers share one bucket.
	actual, _ := r.limiters.LoadOrStore(clientAddr, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupStale removes buckets that haven't been touched in the last hour.
func (r *RateLimiter) cleanupStale(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			r.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if stale {
					r.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
