package models

// Realtime event types carried over websocket connections.
const (
	EventMessage  = "message"
	EventReaction = "reaction"
	EventEffect   = "effect"
	EventTyping   = "typing"
)

// TypingSignal is an ephemeral broadcast payload. It is never persisted
// and the sending client is excluded from receiving its own signal.
type TypingSignal struct {
	UserID string `json:"user_id"`
}

// RealtimeEvent is the envelope broadcast through websockets. Exactly one
// payload field is set, matching Type.
type RealtimeEvent struct {
	Type     string        `json:"type"`
	Message  *Message      `json:"message,omitempty"`
	Reaction *Reaction     `json:"reaction,omitempty"`
	Effect   *Effect       `json:"effect,omitempty"`
	Typing   *TypingSignal `json:"typing,omitempty"`
}
