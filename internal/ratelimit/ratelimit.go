// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration. MaxAttempts <= 0 disables limiting.
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum attempts per window
	CleanupPeriod time.Duration // How often to clean up old entries
}

// DefaultMessageConfig is disabled; callers set MaxAttempts to opt in.
func DefaultMessageConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   0,
		CleanupPeriod: 10 * time.Minute,
	}
}

// attemptRecord tracks attempts for an IP/identifier
type attemptRecord struct {
	Count     int
	FirstSeen time.Time
}

// Info contains information about rate limit status
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// MemoryRateLimiter is a fixed-window limiter keyed by client identifier.
type MemoryRateLimiter struct {
	config   *Config
	now      func() time.Time
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryRateLimiter creates a limiter and starts its cleanup goroutine.
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultMessageConfig()
	}
	rl := &MemoryRateLimiter{
		config:   config,
		now:      time.Now,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
	}
	if config.CleanupPeriod > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Enabled reports whether the limiter rejects anything at all.
func (rl *MemoryRateLimiter) Enabled() bool {
	return rl.config.MaxAttempts > 0
}

// Allow counts one attempt for identifier.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, Info) {
	limit := rl.config.MaxAttempts
	if limit <= 0 {
		return true, Info{Allowed: true, Limit: limit}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, ok := rl.attempts[identifier]
	if !ok || now.Sub(record.FirstSeen) >= rl.config.WindowSize {
		record = &attemptRecord{FirstSeen: now}
		rl.attempts[identifier] = record
	}

	reset := record.FirstSeen.Add(rl.config.WindowSize)
	if record.Count >= limit {
		return false, Info{
			Limit:      limit,
			ResetTime:  reset,
			RetryAfter: reset.Sub(now),
		}
	}

	record.Count++
	return true, Info{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - record.Count,
		ResetTime: reset,
	}
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes records whose window has expired
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.attempts {
		if now.Sub(record.FirstSeen) >= rl.config.WindowSize {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	// Check for forwarded IP (behind proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
