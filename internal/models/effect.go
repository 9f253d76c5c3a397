package models

import (
	"encoding/json"
	"time"
)

// EffectLovePair is raised when two different senders exchange love
// messages in direct succession.
const EffectLovePair = "love_pair"

// Effect is a transient signal row consumed by connected clients within a
// short display window and never read again.
type Effect struct {
	ID             int64           `db:"id" json:"id"`
	ConversationID string          `db:"conversation_id" json:"conversation_id"`
	Kind           string          `db:"type" json:"type"`
	Payload        json.RawMessage `db:"payload" json:"payload"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
