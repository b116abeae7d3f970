package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-identity token-bucket limiter for the message
// send path. Buckets are created on demand and idle ones are evicted
// opportunistically during lookups to bound memory. Process-local by
// design; horizontally scaled deployments need a shared limiter.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// Middleware rejects requests that exceed the caller's bucket with 429.
// Callers are keyed by principal id, falling back to the remote address
// for unauthenticated paths.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + r.RemoteAddr
		if p, ok := PrincipalFromContext(r.Context()); ok {
			key = "user:" + p.ID
		}
		if !l.allow(key) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lookups++
	if l.lookups%256 == 0 {
		cutoff := time.Now().Add(-l.ttl)
		for k, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, k)
			}
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}
