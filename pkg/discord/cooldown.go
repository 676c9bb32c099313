package discord

import (
	"sync"
	"time"
)

type cooldownKey struct {
	command string
	user    string
}

type cooldownEntry struct {
	at     time.Time
	window time.Duration
}

func (e cooldownEntry) expires() time.Time {
	return e.at.Add(e.window)
}

// CooldownTracker stores the last accepted invocation per (command, user).
// Entries expire lazily: an entry older than its window counts as absent.
type CooldownTracker struct {
	mu      sync.Mutex
	entries map[cooldownKey]cooldownEntry
	now     func() time.Time
}

// NewCooldownTracker creates a tracker using the wall clock
func NewCooldownTracker() *CooldownTracker {
	return NewCooldownTrackerWithClock(time.Now)
}

// NewCooldownTrackerWithClock creates a tracker with an injected clock
func NewCooldownTrackerWithClock(now func() time.Time) *CooldownTracker {
	return &CooldownTracker{
		entries: make(map[cooldownKey]cooldownEntry),
		now:     now,
	}
}

// Acquire records an invocation when the user is not cooling down. When the
// user is still within window it returns false and the moment the window
// ends, leaving the stored timestamp untouched.
func (t *CooldownTracker) Acquire(command, user string, window time.Duration) (bool, time.Time) {
	if window <= 0 {
		return true, time.Time{}
	}

	key := cooldownKey{command: command, user: user}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.entries[key]; ok {
		if expires := last.at.Add(window); now.Before(expires) {
			return false, expires
		}
	}
	t.entries[key] = cooldownEntry{at: now, window: window}
	t.sweepLocked(now)
	return true, time.Time{}
}

// Remaining returns how long the user must still wait
func (t *CooldownTracker) Remaining(command, user string, window time.Duration) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.entries[cooldownKey{command: command, user: user}]
	if !ok {
		return 0
	}
	if left := last.at.Add(window).Sub(t.now()); left > 0 {
		return left
	}
	return 0
}

// Clear drops every entry of a command
func (t *CooldownTracker) Clear(command string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.entries {
		if key.command == command {
			delete(t.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired or not
func (t *CooldownTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// sweepLocked drops expired entries once the map grows large
func (t *CooldownTracker) sweepLocked(now time.Time) {
	if len(t.entries) < sweepThreshold {
		return
	}
	for key, e := range t.entries {
		if !now.Before(e.expires()) {
			delete(t.entries, key)
		}
	}
}

const sweepThreshold = 4096
