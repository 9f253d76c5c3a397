package chatstate

import (
	"alive-chat/internal/models"
)

// ReactionStore groups the active room's reactions by message id. Like the
// message store it is replaced on room activation and appended to on
// matching realtime inserts.
type ReactionStore struct {
	room      string
	byMessage map[int64][]models.Reaction
}

// Activate switches the store to a room and groups its reaction history.
func (s *ReactionStore) Activate(roomID string, reactions []models.Reaction) {
	s.room = roomID
	s.byMessage = make(map[int64][]models.Reaction, len(reactions))
	for _, r := range reactions {
		s.byMessage[r.MessageID] = append(s.byMessage[r.MessageID], r)
	}
}

// Apply merges an incoming reaction insert, reporting whether it was kept.
func (s *ReactionStore) Apply(r models.Reaction) bool {
	if s.room == "" || r.ConversationID != s.room {
		return false
	}
	if s.byMessage == nil {
		s.byMessage = make(map[int64][]models.Reaction)
	}
	s.byMessage[r.MessageID] = append(s.byMessage[r.MessageID], r)
	return true
}

// For returns the ordered reaction list of one message.
func (s *ReactionStore) For(messageID int64) []models.Reaction {
	src := s.byMessage[messageID]
	out := make([]models.Reaction, len(src))
	copy(out, src)
	return out
}

// Counts aggregates one message's reactions into emoji counts for display.
func (s *ReactionStore) Counts(messageID int64) map[string]int {
	counts := make(map[string]int)
	for _, r := range s.byMessage[messageID] {
		counts[r.Emoji]++
	}
	return counts
}
