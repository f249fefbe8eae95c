// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"inkwell/internal/render"
)

// cleanupInterval is how often idle clients are dropped.
const cleanupInterval = 5 * time.Minute

// RateLimiter allows at most limit requests per client IP in any sliding
// window. The login, 2FA and contact endpoints each get their own.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	stopped sync.Once
}

// NewRateLimiter creates a rate limiter and starts the goroutine that drops
// idle clients. Call Stop when the limiter is no longer used.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopped.Do(func() { close(rl.stopCh) })
}

// allow records a request for key. When the key is over its limit it
// returns false and how long until the oldest request leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := pruned(rl.clients[key], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.clients[key] = recent
		return false, recent[0].Add(rl.window).Sub(now)
	}
	rl.clients[key] = append(recent, now)
	return true, 0
}

// cleanup removes clients with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, stamps := range rl.clients {
		if recent := pruned(stamps, cutoff); len(recent) > 0 {
			rl.clients[key] = recent
		} else {
			delete(rl.clients, key)
		}
	}
}

// pruned drops timestamps at or before cutoff. Timestamps are appended in
// order, so the survivors are a suffix.
func pruned(stamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range stamps {
		if ts.After(cutoff) {
			return stamps[i:]
		}
	}
	return stamps[:0]
}

// Middleware rejects over-limit clients with 429 and a Retry-After header
// in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
			render.Error(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retrySeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

// clientIP returns the host part of RemoteAddr. Proxy headers are not read
// here: the router runs chi's RealIP first, which rewrites RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
