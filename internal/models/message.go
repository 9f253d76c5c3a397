package models

import (
	"strings"
	"time"
)

// Message kinds. A message is tagged "love" when its text matches the
// trigger phrase, everything else is "normal".
const (
	KindNormal = "normal"
	KindLove   = "love"
)

// Self-reported mood tags attached by the sender.
const (
	MoodNormal = "normal"
	MoodSoft   = "soft"
	MoodAngry  = "angry"
)

// loveTrigger is the literal phrase that classifies a message as "love".
const loveTrigger = "volim te"

// Message is a single chat message. Rows are immutable once inserted.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	Text           string    `db:"text" json:"text"`
	Kind           string    `db:"type" json:"type"`
	Mood           string    `db:"mood" json:"mood"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// KindFromText classifies a message text: the trigger phrase, trimmed and
// case-insensitive, as an exact match or prefix makes it a "love" message.
func KindFromText(text string) string {
	n := strings.ToLower(strings.TrimSpace(text))
	if n == loveTrigger || strings.HasPrefix(n, loveTrigger) {
		return KindLove
	}
	return KindNormal
}

// ValidMood reports whether the given mood tag is one the system knows.
func ValidMood(mood string) bool {
	switch mood {
	case MoodNormal, MoodSoft, MoodAngry:
		return true
	}
	return false
}
