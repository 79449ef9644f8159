package spectate

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-IP limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration // how often idle limiters are dropped
}

// DefaultRateLimitConfig matches the embedded config defaults.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 10,
	Burst:             20,
	CleanupInterval:   5 * time.Minute,
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters sync.Map // map[string]*ipLimiterEntry
	config   RateLimitConfig
	now      func() time.Time

	allowed  atomic.Uint64
	rejected atomic.Uint64
}

// NewIPRateLimiter creates a limiter. It starts no goroutines; call Run to
// evict idle entries.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	return &IPRateLimiter{config: cfg, now: time.Now}
}

func (rl *IPRateLimiter) entry(ip string) *ipLimiterEntry {
	if v, ok := rl.limiters.Load(ip); ok {
		return v.(*ipLimiterEntry)
	}
	e := &ipLimiterEntry{
		limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
	}
	actual, _ := rl.limiters.LoadOrStore(ip, e)
	return actual.(*ipLimiterEntry)
}

// Allow reports whether a request from ip may proceed.
func (rl *IPRateLimiter) Allow(ip string) bool {
	e := rl.entry(ip)
	now := rl.now()
	e.lastSeen.Store(now.UnixNano())
	if e.limiter.AllowN(now, 1) {
		rl.allowed.Add(1)
		return true
	}
	rl.rejected.Add(1)
	return false
}

// Middleware rejects over-limit requests with 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run evicts idle limiters until ctx is done.
func (rl *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops limiters unused for two cleanup intervals.
func (rl *IPRateLimiter) cleanup() int {
	cutoff := rl.now().Add(-2 * rl.config.CleanupInterval).UnixNano()
	removed := 0
	rl.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Stats returns allowed and rejected request counts.
func (rl *IPRateLimiter) Stats() (allowed, rejected uint64) {
	return rl.allowed.Load(), rl.rejected.Load()
}

// ClientIP extracts the client address, preferring proxy headers.
// X-Forwarded-For can be spoofed when not behind a trusted proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
