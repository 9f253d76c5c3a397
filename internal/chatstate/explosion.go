package chatstate

import (
	"alive-chat/internal/models"
)

// MarkerStore persists the per-room-per-viewer "last exploded" marker. It
// is client-local state: never synchronized across devices.
type MarkerStore interface {
	LastExploded(roomID, userID string) (int64, error)
	SetLastExploded(roomID, userID string, messageID int64) error
}

// ExplosionGate decides when the local explosion overlay fires: the most
// recent angry message from another sender triggers it exactly once per
// message id, deduplicated through the persisted marker.
type ExplosionGate struct {
	selfID  string
	markers MarkerStore
}

// NewExplosionGate builds a gate for the given viewer.
func NewExplosionGate(selfID string, markers MarkerStore) *ExplosionGate {
	return &ExplosionGate{selfID: selfID, markers: markers}
}

// Scan inspects the active room's message list and reports whether the
// overlay should fire now, advancing the marker when it does. A marker
// read or write failure aborts the trigger; the worst case is a replay on
// the next scan.
func (g *ExplosionGate) Scan(roomID string, msgs []models.Message) (bool, error) {
	if g.selfID == "" || roomID == "" || len(msgs) == 0 {
		return false, nil
	}

	var latest *models.Message
	for i := range msgs {
		m := &msgs[i]
		if m.Mood == models.MoodAngry && m.SenderID != g.selfID {
			latest = m
		}
	}
	if latest == nil {
		return false, nil
	}

	last, err := g.markers.LastExploded(roomID, g.selfID)
	if err != nil {
		return false, err
	}
	if last == latest.ID {
		return false, nil
	}

	if err := g.markers.SetLastExploded(roomID, g.selfID, latest.ID); err != nil {
		return false, err
	}
	return true, nil
}
