package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps events per key over a window using a token bucket per
// key: the bucket refills at events/window and bursts to the full window
// budget, so a quiet key can always spend its whole allowance at once.
type RateLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int

	Limit  int
	Window time.Duration
}

// NewRateLimiter allows up to events per window for each key.
func NewRateLimiter(events int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:   rate.Limit(float64(events) / window.Seconds()),
		burst:  events,
		Limit:  events,
		Window: window,
	}
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, exists := rl.limiters.Load(key)
	if !exists {
		limiter, _ = rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	}
	return limiter.(*rate.Limiter)
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Remaining reports the whole tokens left for the key.
func (rl *RateLimiter) Remaining(key string) int {
	return int(rl.getLimiter(key).Tokens())
}
