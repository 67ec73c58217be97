package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterRegistry keeps a token bucket per client IP.
type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiterRegistry(perSecond float64, burst int) *limiterRegistry {
	return &limiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether a command from ip fits its budget.
func (r *limiterRegistry) Allow(ip string) bool {
	r.mu.Lock()
	l, ok := r.limiters[ip]
	if !ok {
		l = rate.NewLimiter(r.rate, r.burst)
		r.limiters[ip] = l
	}
	r.mu.Unlock()

	return l.Allow()
}
