package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding-window attempt counter. It tracks
// timestamped attempts per key and rejects once a threshold is exceeded
// within the trailing window. State resets on process restart; this is a
// throttle, not a security boundary of record.
type Limiter struct {
	window time.Duration
	max    int

	mu       sync.Mutex
	attempts map[string][]time.Time
	clock    func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock injects a time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// New builds a limiter allowing max attempts per key within window.
func New(window time.Duration, max int, opts ...Option) *Limiter {
	l := &Limiter{
		window:   window,
		max:      max,
		attempts: make(map[string][]time.Time),
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// IsLimited prunes expired attempts for key and reports whether the
// remaining count has reached the threshold.
func (l *Limiter) IsLimited(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key, l.clock())) >= l.max
}

// RecordAttempt registers one attempt for key at the current time.
func (l *Limiter) RecordAttempt(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key] = append(l.attempts[key], l.clock())
}

// RetryAfter returns the seconds until the oldest attempt in the window
// expires, rounded up. Zero means the key is not tracked.
func (l *Limiter) RetryAfter(key string) int {
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()
	attempts := l.prune(key, now)
	if len(attempts) == 0 {
		return 0
	}
	remaining := l.window - now.Sub(attempts[0])
	secs := int(remaining / time.Second)
	if remaining%time.Second > 0 {
		secs++
	}
	return secs
}

// prune drops attempts outside the window and returns what remains. Keys
// whose sequence prunes to empty are deleted so idle keys never accumulate.
// Callers must hold l.mu.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	kept := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = kept
	return kept
}

// Len reports the number of tracked keys, pruning nothing.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
