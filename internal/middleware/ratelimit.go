package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DukeRupert/rcadmin/internal/metrics"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter tracks attempt counts per key within a fixed window.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter and starts its cleanup worker.
// Call Close to stop the worker.
func NewRateLimiter(maxAttempts int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
		stop:        make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// entry returns the live entry for key, resetting it if its window elapsed.
// Callers hold rl.mu.
func (rl *RateLimiter) entry(key string) *rateLimitEntry {
	now := rl.now()
	e, ok := rl.entries[key]
	if !ok || now.Sub(e.windowStart) > rl.window {
		e = &rateLimitEntry{windowStart: now}
		rl.entries[key] = e
	}
	return e
}

// Allow counts an attempt for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e := rl.entry(key)
	if e.count >= rl.maxAttempts {
		return false
	}
	e.count++
	return true
}

// Blocked reports whether key has used up its attempts, without counting one.
func (rl *RateLimiter) Blocked(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok || rl.now().Sub(e.windowStart) > rl.window {
		return false
	}
	return e.count >= rl.maxAttempts
}

// RecordFailure counts a failed attempt for key.
func (rl *RateLimiter) RecordFailure(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entry(key).count++
}

// Reset clears the count for key.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

// TimeUntilReset returns how long until the window for key ends.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok {
		return 0
	}
	elapsed := rl.now().Sub(e.windowStart)
	if elapsed >= rl.window {
		return 0
	}
	return rl.window - elapsed
}

// Close stops the cleanup worker. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup periodically removes expired entries.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, e := range rl.entries {
				if now.Sub(e.windowStart) > rl.window {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns middleware that counts every request against the limit.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		if !m.limiter.Allow(clientIP) {
			m.reject(w, r, clientIP)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) reject(w http.ResponseWriter, r *http.Request, clientIP string) {
	m.logger.Warn("rate limit exceeded",
		"ip", clientIP,
		"path", r.URL.Path,
		"method", r.Method,
	)

	retryAfter := int(m.limiter.TimeUntilReset(clientIP).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	if isAPIRequest(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please try again later.",
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Too Many Requests</title></head>
<body>
<h1>Too Many Requests</h1>
<p>Too many sign-in attempts. Please wait a few minutes and try again.</p>
<p><a href="/login">Back to sign in</a></p>
</body>
</html>`))
}

// =============================================================================
// Login Rate Limiter
// =============================================================================

const (
	// LoginMaxAttempts is the number of failed sign-ins allowed per window.
	LoginMaxAttempts = 5

	// LoginWindow is the login rate limit window.
	LoginWindow = 15 * time.Minute
)

// LoginRateLimiter throttles sign-in attempts per client IP. Only failed
// attempts count; a successful sign-in clears the count.
type LoginRateLimiter struct {
	limiter *RateLimiter
	mw      *RateLimitMiddleware
}

// NewLoginRateLimiter creates a limiter allowing LoginMaxAttempts failures
// per LoginWindow.
func NewLoginRateLimiter(logger *slog.Logger) *LoginRateLimiter {
	limiter := NewRateLimiter(LoginMaxAttempts, LoginWindow, logger)
	return &LoginRateLimiter{
		limiter: limiter,
		mw:      NewRateLimitMiddleware(limiter, logger),
	}
}

// LimitLogin rejects sign-in submissions from IPs that used up their attempts.
func (l *LoginRateLimiter) LimitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		if l.limiter.Blocked(clientIP) {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			l.mw.reject(w, r, clientIP)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordFailedLogin counts a failed sign-in for the request's client.
func (l *LoginRateLimiter) RecordFailedLogin(r *http.Request) {
	l.limiter.RecordFailure(getClientIP(r))
}

// ResetLogin clears the count for the request's client after a successful sign-in.
func (l *LoginRateLimiter) ResetLogin(r *http.Request) {
	l.limiter.Reset(getClientIP(r))
}

// Close stops the limiter's cleanup worker.
func (l *LoginRateLimiter) Close() {
	l.limiter.Close()
}

// =============================================================================
// Helpers
// =============================================================================

// getClientIP extracts the client IP from the request, considering proxy headers.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: client, proxy1, proxy2
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	// nginx
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
