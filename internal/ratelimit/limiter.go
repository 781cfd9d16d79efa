// Package ratelimit throttles reconciliation triggers per site.
package ratelimit

import (
	"sync"
	"time"

	"grimm.is/allowsync/internal/clock"
)

// Limiter is a fixed-window counter per key.
type Limiter struct {
	limit    int
	interval time.Duration
	clock    clock.Clock

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	remaining int
	start     time.Time
}

// NewLimiter allows limit calls per key in each interval.
func NewLimiter(limit int, interval time.Duration, c clock.Clock) *Limiter {
	return &Limiter{
		limit:    limit,
		interval: interval,
		clock:    clock.OrReal(c),
		windows:  make(map[string]*window),
	}
}

// Allow takes one slot for key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.interval {
		w = &window{remaining: l.limit, start: now}
		l.windows[key] = w
	}
	if w.remaining <= 0 {
		return false
	}
	w.remaining--
	return true
}

// RetryAfter is how long until key gets a fresh window.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		return 0
	}
	if d := l.interval - l.clock.Since(w.start); d > 0 {
		return d
	}
	return 0
}

// Reset clears key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}
