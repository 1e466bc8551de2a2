package http

import (
	"sync/atomic"
	"time"
)

// rateLimiter counts frames per fixed window. A zero limit allows everything.
type rateLimiter struct {
	limit   int64
	counter atomic.Int64
	window  time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{}
	}
	return &rateLimiter{limit: int64(limit), window: window}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	return r.counter.Add(1) <= r.limit
}

// startReset clears the counter every window until stop is closed.
func (r *rateLimiter) startReset(stop <-chan struct{}) {
	if r == nil || r.limit <= 0 {
		return
	}
	ticker := time.NewTicker(r.window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.counter.Store(0)
			case <-stop:
				return
			}
		}
	}()
}
