package chatstate

import (
	"alive-chat/internal/models"
)

// MessageStore holds the ordered message list for the active room. History
// is replaced wholesale on room activation; realtime inserts are appended
// only when they belong to the open room. Ordering relies on the backend's
// insert-order delivery; no out-of-order correction is performed.
type MessageStore struct {
	room string
	msgs []models.Message
}

// Activate switches the store to a room, replacing any prior cached list
// with its full history ordered oldest first.
func (s *MessageStore) Activate(roomID string, history []models.Message) {
	s.room = roomID
	s.msgs = make([]models.Message, len(history))
	copy(s.msgs, history)
}

// Apply merges an incoming realtime insert. It reports whether the message
// was appended; messages for other rooms are ignored here (they still
// update the inbox).
func (s *MessageStore) Apply(msg models.Message) bool {
	if s.room == "" || msg.ConversationID != s.room {
		return false
	}
	s.msgs = append(s.msgs, msg)
	return true
}

// Room returns the currently active room id, empty when none.
func (s *MessageStore) Room() string {
	return s.room
}

// Messages returns a copy of the active room's message list.
func (s *MessageStore) Messages() []models.Message {
	out := make([]models.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}
