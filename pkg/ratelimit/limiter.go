// Package ratelimit implements a fixed-window request counter keyed by
// string (source address, normalized email). Windows are intentionally fixed
// rather than sliding: a burst straddling a boundary can momentarily pass up
// to twice the nominal rate, which is acceptable for an anti-abuse limiter.
//
// State is process-local. Horizontally scaled deployments without shared
// state under-enforce proportionally to instance count.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultMaxEntries = 10000

// Entry tracks one key's current window.
type Entry struct {
	Count     int
	ResetTime time.Time
}

// Decision is the outcome of a limit check. RetryAfter is in whole seconds,
// rounded up, and only set when the request is denied.
type Decision struct {
	Allowed    bool
	RetryAfter int
}

// Limiter is a fixed-window counter over an expiring in-memory map. Each
// instance owns an independent key space.
type Limiter struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	order      []string // insertion order, for bounded-size eviction
	max        int
	window     time.Duration
	maxEntries int
	now        func() time.Time
}

type Option func(*Limiter)

// WithClock injects the time source, so tests can step through window expiry
// instead of sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithMaxEntries bounds the map size under sustained unique-key traffic.
func WithMaxEntries(n int) Option {
	return func(l *Limiter) { l.maxEntries = n }
}

// New creates a limiter allowing max requests per window.
func New(max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		entries:    make(map[string]*Entry),
		max:        max,
		window:     window,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records a request for key and decides whether it is allowed.
func (l *Limiter) Check(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || !entry.ResetTime.After(now) {
		// New window
		if !ok {
			l.order = append(l.order, key)
		}
		l.entries[key] = &Entry{Count: 1, ResetTime: now.Add(l.window)}
		return Decision{Allowed: true}
	}

	if entry.Count >= l.max {
		retryAfter := int((entry.ResetTime.Sub(now) + time.Second - 1) / time.Second)
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}

	entry.Count++
	return Decision{Allowed: true}
}

// Sweep removes entries whose window has expired, then evicts the
// oldest-inserted entries if the map still exceeds its size bound.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.entries {
		if !entry.ResetTime.After(now) {
			delete(l.entries, key)
		}
	}

	kept := l.order[:0]
	for _, key := range l.order {
		if _, ok := l.entries[key]; ok {
			kept = append(kept, key)
		}
	}
	l.order = kept

	for len(l.entries) > l.maxEntries {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}
}

// Len reports the current number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// StartJanitor sweeps the map periodically until ctx is cancelled.
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}
