package chatstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition not reached in time")
}

func TestTypingTrackerExpiresAfterLastSignal(t *testing.T) {
	tr := NewTypingTracker("me", 60*time.Millisecond, nil)
	defer tr.Close()

	tr.Observe("ana")
	require.Equal(t, []string{"ana"}, tr.Active())

	waitFor(t, func() bool { return len(tr.Active()) == 0 })
}

func TestTypingTrackerRestartsExpiryOnRepeatSignal(t *testing.T) {
	tr := NewTypingTracker("me", 100*time.Millisecond, nil)
	defer tr.Close()

	tr.Observe("ana")
	// Keep signaling past the original deadline; membership must survive
	// because expiry counts from the most recent signal, not the first.
	for i := 0; i < 4; i++ {
		time.Sleep(50 * time.Millisecond)
		tr.Observe("ana")
		require.Equal(t, []string{"ana"}, tr.Active())
	}

	waitFor(t, func() bool { return len(tr.Active()) == 0 })
}

func TestTypingTrackerLateCallbackReArmsAgainstMovedDeadline(t *testing.T) {
	tr := NewTypingTracker("me", time.Minute, nil)
	defer tr.Close()

	tr.Observe("ana")
	// An expiry callback that was already in flight when a fresh signal
	// moved the deadline must keep the user and re-arm, not remove them.
	tr.expire("ana")
	require.Equal(t, []string{"ana"}, tr.Active())
}

func TestTypingTrackerIgnoresSelf(t *testing.T) {
	tr := NewTypingTracker("me", time.Minute, nil)
	defer tr.Close()

	tr.Observe("me")
	tr.Observe("")
	assert.Empty(t, tr.Active())
}

func TestTypingTrackerText(t *testing.T) {
	tr := NewTypingTracker("me", time.Minute, nil)
	defer tr.Close()

	assert.Equal(t, "", tr.Text())

	tr.Observe("ana")
	assert.Equal(t, "ana is typing…", tr.Text())

	tr.Observe("bruno")
	assert.Equal(t, "ana, bruno are typing…", tr.Text())
}

func TestTypingTrackerResetCancelsPendingExpiries(t *testing.T) {
	fired := make(chan struct{}, 8)
	tr := NewTypingTracker("me", 40*time.Millisecond, func() { fired <- struct{}{} })
	defer tr.Close()

	tr.Observe("ana")
	<-fired // join notification
	tr.Reset()
	require.Empty(t, tr.Active())

	select {
	case <-fired:
		t.Fatal("stale expiry fired after reset")
	case <-time.After(120 * time.Millisecond):
	}
}

func TestTypingTrackerCloseDropsLaterSignals(t *testing.T) {
	tr := NewTypingTracker("me", time.Minute, nil)
	tr.Close()
	tr.Observe("ana")
	assert.Empty(t, tr.Active())
}
