package ws

import (
	"sync"
	"time"

	"github.com/kiddieguard/sentinel/internal/core"
)

// ConnRateLimiter is a sliding-window limiter keyed by connection. It
// guards the remote_log diagnostics channel: a browser stuck in an error
// loop must not flood the operator console.
type ConnRateLimiter struct {
	mu       sync.Mutex
	history  map[core.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func NewConnRateLimiter(limit int, interval time.Duration) *ConnRateLimiter {
	return &ConnRateLimiter{
		history:  make(map[core.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *ConnRateLimiter) Allow(id core.ConnID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[id] = fresh
	return true
}

// Forget drops a connection's history once it disconnects.
func (rl *ConnRateLimiter) Forget(id core.ConnID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, id)
}
