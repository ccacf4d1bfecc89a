package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow  = time.Minute
	rateLimitExpiry  = 65 * time.Second
	rateLimitTimeout = 200 * time.Millisecond
)

// RateLimiter provides per-IP fixed-window rate limiting with an optional
// Redis backend shared by all server instances
type RateLimiter struct {
	rpm   int
	redis *redis.Client
	now   func() time.Time

	inMemMu     sync.Mutex
	inMemCount  map[string]int
	inMemWindow int64
}

// NewRateLimiter creates a limiter allowing rpm requests per minute per IP.
// rpm <= 0 disables limiting; a nil client keeps counts in memory.
func NewRateLimiter(rpm int, redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{rpm: rpm, redis: redisClient, now: time.Now, inMemCount: map[string]int{}}
}

// window returns the index of the current minute
func (r *RateLimiter) window() int64 {
	return r.now().Unix() / int64(rateLimitWindow/time.Second)
}

// Allow returns whether the request is allowed and the remaining quota
func (r *RateLimiter) Allow(ctx context.Context, ip string) (bool, int) {
	if r.rpm <= 0 {
		return true, r.rpm
	}
	if r.redis != nil {
		ctx, cancel := context.WithTimeout(ctx, rateLimitTimeout)
		defer cancel()

		key := fmt.Sprintf("ytbw:ratelimit:%s:%d", ip, r.window())
		n, err := r.redis.Incr(ctx, key).Result()
		if err == nil {
			if n == 1 {
				_ = r.redis.Expire(ctx, key, rateLimitExpiry).Err()
			}
			return int(n) <= r.rpm, r.rpm - int(n)
		}
		// Fallback to in-memory on error
	}
	return r.allowInMem(ip)
}

func (r *RateLimiter) allowInMem(ip string) (bool, int) {
	r.inMemMu.Lock()
	defer r.inMemMu.Unlock()

	// Reset counts on minute boundary
	if w := r.window(); w != r.inMemWindow {
		r.inMemCount = map[string]int{}
		r.inMemWindow = w
	}
	r.inMemCount[ip]++
	n := r.inMemCount[ip]
	return n <= r.rpm, r.rpm - n
}

// Middleware rejects requests over the limit with 429
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		allowed, remaining := r.Allow(req.Context(), GetClientIP(req))
		if r.rpm > 0 {
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprint(max(remaining, 0)))
		}
		if !allowed {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too many requests, try again in a minute", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// GetClientIP extracts client IP from headers or RemoteAddr
func GetClientIP(r *http.Request) string {
	// Try common proxy headers
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Use the first IP in the list
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
