package models

import "time"

// Conversation is a derived inbox entry. It is never stored directly:
// the inbox is recomputed from the flat message history and kept ordered
// by last activity.
type Conversation struct {
	ID          string    `json:"id"`
	LastMessage string    `json:"last_message"`
	LastSender  string    `json:"last_sender"`
	LastAt      time.Time `json:"last_at"`
}
