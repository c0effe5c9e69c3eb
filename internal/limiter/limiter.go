package limiter

import (
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the per-user budget inside one window.
	DefaultMaxRequests = 30
	// DefaultWindow is the trailing window duration.
	DefaultWindow = 60 * time.Second
)

// Limiter is a sliding-window admission controller keyed by user identity.
// Each user owns an ordered slice of request instants; timestamps are appended
// in increasing order, so pruning from the front is enough. State is
// process-local and is not persisted across restarts.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
}

// New builds a limiter allowing max requests per user within window.
// Non-positive arguments fall back to the defaults.
func New(max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		windows: make(map[string][]time.Time),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// TryAcquire prunes expired timestamps for the user, then either records the
// request and allows it, or denies it without recording the attempt. The
// prune-check-append sequence runs under one lock so two concurrent calls for
// the same user can never both take the last slot.
func (l *Limiter) TryAcquire(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	window := l.prune(userID, now)
	if len(window) >= l.max {
		l.windows[userID] = window
		return false
	}
	l.windows[userID] = append(window, now)
	return true
}

// Remaining reports how many requests the user still has inside the current
// window. Read-only from the caller's point of view.
func (l *Limiter) Remaining(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.prune(userID, l.now())
	l.windows[userID] = window
	if rem := l.max - len(window); rem > 0 {
		return rem
	}
	return 0
}

// prune drops timestamps that have aged out of the window. Caller holds l.mu.
func (l *Limiter) prune(userID string, now time.Time) []time.Time {
	window := l.windows[userID]
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	return window[i:]
}
