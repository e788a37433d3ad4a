package cooldown

import (
	"sync"
	"time"
)

// DefaultWindow is the minimum interval between accepted draws for one user.
const DefaultWindow = 5 * time.Second

// Decision is the result of a cooldown check.
type Decision struct {
	Accepted  bool
	Remaining time.Duration
}

// WaitSeconds is the wait shown to a rejected user, never below one second.
func (d Decision) WaitSeconds() int64 {
	secs := int64(d.Remaining / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Guard remembers the last accepted draw per user.
// Entries are never evicted.
type Guard struct {
	mu     sync.Mutex
	window time.Duration
	last   map[int64]time.Time
}

// NewGuard creates a guard with the given window, DefaultWindow if window <= 0.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{
		window: window,
		last:   make(map[int64]time.Time),
	}
}

// Window returns the configured cooldown window.
func (g *Guard) Window() time.Duration {
	return g.window
}

// CheckAndMark accepts the draw and records now when the user is outside the
// window, otherwise it rejects with the remaining wait and leaves state as is.
func (g *Guard) CheckAndMark(userID int64, now time.Time) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.last[userID]; ok {
		elapsed := now.Sub(prev)
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed < g.window {
			return Decision{Remaining: g.window - elapsed}
		}
	}

	g.last[userID] = now
	return Decision{Accepted: true}
}

// Len returns the number of tracked users.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}
