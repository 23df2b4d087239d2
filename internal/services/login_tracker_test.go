package services

import (
	"testing"
	"time"
)

func trackerAt(now *time.Time) *memoryAttemptTracker {
	return &memoryAttemptTracker{
		attempts: make(map[string]*loginAttempt),
		now:      func() time.Time { return *now },
	}
}

func TestLoginAttemptTracker_Lockout(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	tracker := trackerAt(&now)

	t.Run("locks after five failures", func(t *testing.T) {
		for i := 0; i < maxLoginFailures-1; i++ {
			tracker.RecordFailure("alice")
			if tracker.Locked("alice") {
				t.Fatalf("locked after %d failures", i+1)
			}
		}

		tracker.RecordFailure("alice")
		if !tracker.Locked("alice") {
			t.Fatal("expected lock after reaching the failure limit")
		}
	})

	t.Run("other usernames unaffected", func(t *testing.T) {
		if tracker.Locked("bob") {
			t.Fatal("bob should not be locked")
		}
	})

	t.Run("window expiry unlocks", func(t *testing.T) {
		now = now.Add(loginFailureWindow + time.Second)
		if tracker.Locked("alice") {
			t.Fatal("lock should expire with the window")
		}
	})
}

func TestLoginAttemptTracker_ClearAndReset(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	tracker := trackerAt(&now)

	for i := 0; i < maxLoginFailures; i++ {
		tracker.RecordFailure("alice")
		tracker.RecordFailure("bob")
	}

	t.Run("clear removes one username", func(t *testing.T) {
		tracker.Clear("alice")
		if tracker.Locked("alice") {
			t.Fatal("alice should be cleared")
		}
		if !tracker.Locked("bob") {
			t.Fatal("bob should still be locked")
		}
	})

	t.Run("reset drops everything", func(t *testing.T) {
		tracker.Reset()
		if tracker.Locked("bob") {
			t.Fatal("reset should drop all state")
		}
	})
}

func TestLoginAttemptTracker_StaleStreakRestarts(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	tracker := trackerAt(&now)

	for i := 0; i < maxLoginFailures-1; i++ {
		tracker.RecordFailure("alice")
	}

	// A failure after the window starts a fresh streak of one
	now = now.Add(loginFailureWindow + time.Minute)
	tracker.RecordFailure("alice")
	if tracker.Locked("alice") {
		t.Fatal("stale failures should not count toward the lock")
	}
}
