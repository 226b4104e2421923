// Per-client rate limiting for computation-heavy endpoints.
// Fixed window with a token count per IP, kept in memory.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// pruneThreshold bounds the client table: once it grows past this, expired
// entries are dropped on the next window rollover instead of waiting for a
// background sweep.
const pruneThreshold = 1024

// RateLimiter tracks request tokens per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

type clientWindow struct {
	remaining int
	resetAt   time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
}

// Allow reports whether ip may proceed, consuming one token when it may.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[ip]
	if !ok || now.After(c.resetAt) {
		if len(rl.clients) > pruneThreshold {
			rl.prune(now)
		}
		rl.clients[ip] = &clientWindow{remaining: rl.limit - 1, resetAt: now.Add(rl.window)}
		return true
	}

	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

// RetryAfter returns whole seconds until the window resets for this IP.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		return 0
	}
	rest := time.Until(c.resetAt)
	if rest <= 0 {
		return 0
	}
	return int(rest.Seconds()) + 1
}

// prune drops entries whose window has ended. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	for ip, c := range rl.clients {
		if now.After(c.resetAt) {
			delete(rl.clients, ip)
		}
	}
}

// RateLimitMiddleware wraps a handler with per-client limiting. Limited
// requests get 429 with a Retry-After header.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP extracts the caller address, honoring the first X-Forwarded-For
// entry when a proxy added one.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
