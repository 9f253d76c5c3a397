package chatstate

import (
	"alive-chat/internal/models"
)

// BuildInbox derives the conversation list from a flat message history
// ordered newest first: one entry per conversation id, in order of most
// recent activity, carrying the latest message.
func BuildInbox(history []models.Message) []models.Conversation {
	seen := make(map[string]struct{}, len(history))
	convs := make([]models.Conversation, 0, len(history))
	for _, m := range history {
		if _, ok := seen[m.ConversationID]; ok {
			continue
		}
		seen[m.ConversationID] = struct{}{}
		convs = append(convs, conversationFromMessage(m))
	}
	return convs
}

// Inbox holds the derived conversation list, always ordered by last
// activity descending.
type Inbox struct {
	entries []models.Conversation
}

// Load replaces the inbox with a list derived from a newest-first history.
func (i *Inbox) Load(history []models.Message) {
	i.entries = BuildInbox(history)
}

// Set replaces the inbox with an already-derived conversation list.
func (i *Inbox) Set(entries []models.Conversation) {
	i.entries = make([]models.Conversation, len(entries))
	copy(i.entries, entries)
}

// Upsert merges a new message: the conversation's entry is removed from
// its current position and re-inserted at the front, so the list stays
// sorted without a full re-sort.
func (i *Inbox) Upsert(msg models.Message) {
	entry := conversationFromMessage(msg)
	for idx, c := range i.entries {
		if c.ID == msg.ConversationID {
			i.entries = append(i.entries[:idx], i.entries[idx+1:]...)
			break
		}
	}
	i.entries = append([]models.Conversation{entry}, i.entries...)
}

// Entries returns a copy of the current inbox.
func (i *Inbox) Entries() []models.Conversation {
	out := make([]models.Conversation, len(i.entries))
	copy(out, i.entries)
	return out
}

func conversationFromMessage(m models.Message) models.Conversation {
	return models.Conversation{
		ID:          m.ConversationID,
		LastMessage: m.Text,
		LastSender:  m.SenderID,
		LastAt:      m.CreatedAt,
	}
}
