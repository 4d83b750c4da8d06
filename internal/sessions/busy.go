package sessions

import (
	"errors"
	"sync"
)

// ErrBusy is returned when a session already has an in-flight request.
var ErrBusy = errors.New("session busy: request already in flight")

// BusyGuard enforces at most one in-flight top-level request per
// session. A second request to a busy session is rejected immediately,
// never queued or blocked: the flag is an explicit mutual-exclusion
// guard, not a lock callers wait on.
type BusyGuard struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewBusyGuard creates a guard with no busy sessions.
func NewBusyGuard() *BusyGuard {
	return &BusyGuard{busy: map[string]bool{}}
}

// Acquire marks the session busy. It returns ErrBusy without waiting if
// a request is already in flight. The returned release function is
// idempotent and must be called on every exit path, including panics.
func (g *BusyGuard) Acquire(sessionID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy[sessionID] {
		return nil, ErrBusy
	}
	g.busy[sessionID] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, sessionID)
			g.mu.Unlock()
		})
	}
	return release, nil
}

// Busy reports whether the session has an in-flight request.
func (g *BusyGuard) Busy(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[sessionID]
}

// Count returns the number of busy sessions.
func (g *BusyGuard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.busy)
}
