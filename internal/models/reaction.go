package models

import "time"

// Reaction is an emoji reaction to a message. Append-only; the same user
// may react to the same message more than once.
type Reaction struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	MessageID      int64     `db:"message_id" json:"message_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Emoji          string    `db:"emoji" json:"emoji"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
