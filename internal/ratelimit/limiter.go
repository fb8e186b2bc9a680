// Package ratelimit implements a per-key sliding-window admission
// limiter, the same technique the session package it is lifted from used
// inline (a pruned, mutex-guarded slice of recent request timestamps),
// generalized into a standalone limiter keyed by session ID.
package ratelimit

import (
	"sync"
	"time"
)

const window = 60 * time.Second

// Decision is the result of a Check call.
type Decision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

// Limiter enforces maxRequestsPerMinute per key over a rolling 60-second
// window.
type Limiter struct {
	limit int

	mu      sync.Mutex
	history map[string]*keyState
}

type keyState struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// New creates a Limiter with the given per-minute request limit. A
// non-positive limit disables admission checks (Check always allows).
func New(maxRequestsPerMinute int) *Limiter {
	return &Limiter{
		limit:   maxRequestsPerMinute,
		history: make(map[string]*keyState),
	}
}

// Check prunes timestamps older than now-60s for sessionID, then admits
// the request if fewer than limit remain in the window. No more than
// limit admits can occur within any rolling 60-second window per key.
func (l *Limiter) Check(sessionID string) Decision {
	if l.limit <= 0 {
		return Decision{Allowed: true, Remaining: -1, Limit: l.limit}
	}

	state := l.stateFor(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	pruned := state.timestamps[:0]
	for _, ts := range state.timestamps {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}
	state.timestamps = pruned

	if len(state.timestamps) >= l.limit {
		retryAfter := time.Second
		if len(state.timestamps) > 0 {
			retryAfter = state.timestamps[0].Add(window).Sub(now)
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
		}
		return Decision{
			Allowed:    false,
			Remaining:  0,
			Limit:      l.limit,
			RetryAfter: retryAfter,
		}
	}

	state.timestamps = append(state.timestamps, now)
	return Decision{
		Allowed:   true,
		Remaining: l.limit - len(state.timestamps),
		Limit:     l.limit,
	}
}

// stateFor returns (lazily creating) the per-key timestamp queue.
func (l *Limiter) stateFor(sessionID string) *keyState {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.history[sessionID]
	if !ok {
		s = &keyState{}
		l.history[sessionID] = s
	}
	return s
}
