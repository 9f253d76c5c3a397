package chatstate

import (
	"strings"
	"sync"
	"time"
)

// DefaultTypingExpiry is how long a user stays in the typing set after
// their most recent signal.
const DefaultTypingExpiry = 2 * time.Second

type typingEntry struct {
	timer    *time.Timer
	deadline time.Time
}

// TypingTracker maintains the transient set of currently-typing users.
// Expiry timers are cancelable and owned by the tracker: every new signal
// from the same user moves that user's deadline, and Close stops them all
// so no stale removal fires after teardown. A timer callback that raced a
// fresh signal re-arms against the moved deadline instead of removing the
// user early.
type TypingTracker struct {
	mu       sync.Mutex
	selfID   string
	expiry   time.Duration
	order    []string
	entries  map[string]*typingEntry
	onChange func()
	closed   bool
}

// NewTypingTracker builds a tracker for the given viewer. Signals carrying
// the viewer's own id are ignored. onChange may be nil.
func NewTypingTracker(selfID string, expiry time.Duration, onChange func()) *TypingTracker {
	if expiry <= 0 {
		expiry = DefaultTypingExpiry
	}
	return &TypingTracker{
		selfID:   selfID,
		expiry:   expiry,
		entries:  make(map[string]*typingEntry),
		onChange: onChange,
	}
}

// Observe registers a typing signal from a user, restarting their expiry.
func (t *TypingTracker) Observe(userID string) {
	if userID == "" || userID == t.selfID {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	changed := false
	deadline := time.Now().Add(t.expiry)
	if entry, ok := t.entries[userID]; ok {
		entry.deadline = deadline
		entry.timer.Reset(t.expiry)
	} else {
		t.order = append(t.order, userID)
		t.entries[userID] = &typingEntry{
			timer:    time.AfterFunc(t.expiry, func() { t.expire(userID) }),
			deadline: deadline,
		}
		changed = true
	}
	onChange := t.onChange
	t.mu.Unlock()

	if changed && onChange != nil {
		onChange()
	}
}

func (t *TypingTracker) expire(userID string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	entry, ok := t.entries[userID]
	if !ok {
		t.mu.Unlock()
		return
	}
	// A signal may have moved the deadline after this callback fired.
	if remaining := time.Until(entry.deadline); remaining > 0 {
		entry.timer.Reset(remaining)
		t.mu.Unlock()
		return
	}
	delete(t.entries, userID)
	for i, u := range t.order {
		if u == userID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Active returns the users currently typing, in order of first signal.
func (t *TypingTracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Text renders the indicator line: empty when nobody types, and a
// different phrasing for exactly one versus multiple typers.
func (t *TypingTracker) Text() string {
	active := t.Active()
	switch len(active) {
	case 0:
		return ""
	case 1:
		return active[0] + " is typing…"
	default:
		return strings.Join(active, ", ") + " are typing…"
	}
}

// Reset drops the typing set, canceling all pending expiries.
func (t *TypingTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range t.entries {
		entry.timer.Stop()
	}
	t.entries = make(map[string]*typingEntry)
	t.order = nil
}

// Close tears the tracker down. Subsequent signals are ignored.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for _, entry := range t.entries {
		entry.timer.Stop()
	}
	t.entries = make(map[string]*typingEntry)
	t.order = nil
}
