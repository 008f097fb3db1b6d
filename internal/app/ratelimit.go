package app

import (
	"sync"
	"time"
)

// PostRateLimiter bounds how often one identity may post, by a sliding
// window over recent attempts.
type PostRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewPostRateLimiter(limit int, interval time.Duration) *PostRateLimiter {
	return &PostRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *PostRateLimiter) Allow(email string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[email]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[email] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[email] = fresh
	return true
}
