package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/metrics"
	"borderland-arena/pkg/redis"
)

// RateLimiter implements a simple sliding-window rate limiter
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow checks if a request is allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	// Clean up old requests
	requests := rl.requests[key]
	validRequests := requests[:0]
	for _, reqTime := range requests {
		if reqTime.After(cutoff) {
			validRequests = append(validRequests, reqTime)
		}
	}

	if len(validRequests) >= rl.limit {
		rl.requests[key] = validRequests
		return false
	}

	rl.requests[key] = append(validRequests, now)
	return true
}

// RateLimit limits requests per client IP under scope. With Redis the count
// is a fixed window shared by every instance; without it, or when Redis
// fails, the in-process limiter decides.
func RateLimit(scope string, limit int, window time.Duration, client *redis.Client, logger *logger.Logger) func(http.Handler) http.Handler {
	local := NewRateLimiter(limit, window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed := true

			if client != nil {
				n, err := client.IncrWindow(r.Context(), client.KeyBuilder.KeyRateLimit(scope, ip), window)
				if err != nil {
					logger.WithError(err).WithField("scope", scope).Warn("Rate limit store unavailable, using local limiter")
					allowed = local.Allow(ip)
				} else {
					allowed = n <= int64(limit)
				}
			} else {
				allowed = local.Allow(ip)
			}

			if !allowed {
				metrics.RateLimiterRejections.WithLabelValues(scope).Inc()
				writeErrorResponse(w, r, errors.NewRateLimitError("Too many requests, slow down"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port; chi's RealIP has already applied forwarding headers
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
