package application

import (
	"sync"
	"time"
)

// RateLimiter bounds the request rate per key over a trailing time window.
// Timestamps are pruned lazily on every admission check, so each key holds
// at most maxRequests entries at any instant.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewRateLimiter creates an empty RateLimiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: map[string][]time.Time{}}
}

// Admit reports whether a request for keyID at now fits within the window.
// An admitted request is recorded against the window; a rejected one is
// not. One key's rate never affects another's.
func (r *RateLimiter) Admit(keyID string, now time.Time, window time.Duration, maxRequests int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-window)

	kept := r.windows[keyID][:0]
	for _, ts := range r.windows[keyID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= maxRequests {
		r.windows[keyID] = kept
		return false
	}

	r.windows[keyID] = append(kept, now)
	return true
}

// Reset discards all tracked windows.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = map[string][]time.Time{}
}
