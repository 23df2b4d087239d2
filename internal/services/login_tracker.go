package services

import (
	"sync"
	"time"
)

const (
	// maxLoginFailures locks the account on the next attempt
	maxLoginFailures = 5
	// loginFailureWindow is the trailing window for counting failures
	loginFailureWindow = 5 * time.Minute
)

// LoginAttemptTracker counts failed logins per username. State is
// process-wide and in-memory; losing it on restart is acceptable, it is
// a brute-force heuristic, not a security boundary.
type LoginAttemptTracker interface {
	// Locked reports whether the username has accumulated enough recent
	// failures to be locked out
	Locked(username string) bool
	// RecordFailure increments the counter; the window restarts from
	// the first failure in the current streak
	RecordFailure(username string)
	// Clear removes the counter after a successful login
	Clear(username string)
	// Reset drops all state, for tests
	Reset()
}

type loginAttempt struct {
	count int
	first time.Time
}

type memoryAttemptTracker struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempt
	now      func() time.Time
}

// NewLoginAttemptTracker creates the in-memory tracker
func NewLoginAttemptTracker() LoginAttemptTracker {
	return &memoryAttemptTracker{
		attempts: make(map[string]*loginAttempt),
		now:      time.Now,
	}
}

func (t *memoryAttemptTracker) Locked(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt, ok := t.attempts[username]
	if !ok {
		return false
	}

	if t.now().Sub(attempt.first) > loginFailureWindow {
		delete(t.attempts, username)
		return false
	}

	return attempt.count >= maxLoginFailures
}

func (t *memoryAttemptTracker) RecordFailure(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt, ok := t.attempts[username]
	if !ok || t.now().Sub(attempt.first) > loginFailureWindow {
		t.attempts[username] = &loginAttempt{count: 1, first: t.now()}
		return
	}

	attempt.count++
}

func (t *memoryAttemptTracker) Clear(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, username)
}

func (t *memoryAttemptTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts = make(map[string]*loginAttempt)
}
