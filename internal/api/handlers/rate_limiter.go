package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

// rateLimiter counts attempts per key in fixed windows. Counters live in the
// shared cache when one is configured, otherwise in process memory. A cache
// failure falls back to the local counter.
type rateLimiter struct {
	cache  providers.CacheProvider
	local  *localRateLimiter
	limit  int
	window time.Duration
}

func newRateLimiter(cache providers.CacheProvider, limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		cache:  cache,
		local:  newLocalRateLimiter(),
		limit:  limit,
		window: window,
	}
}

// allow records an attempt and reports whether it is within the limit
func (l *rateLimiter) allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	if l.cache == nil {
		return l.local.allow(key, l.limit, l.window)
	}

	count, err := l.cache.Incr(ctx, key, int(l.window.Seconds()))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable, using local counter")
		return l.local.allow(key, l.limit, l.window)
	}
	if count > int64(l.limit) {
		return false, l.window
	}
	return true, l.window
}

type localRateState struct {
	count   int
	resetAt time.Time
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		l.sweepLocked(now)
		state = &localRateState{resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

func (l *localRateLimiter) sweepLocked(now time.Time) {
	for key, state := range l.states {
		if now.After(state.resetAt) {
			delete(l.states, key)
		}
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
