package ws

import "time"

// ConnInfo describes one websocket connection for observability and
// typing self-exclusion.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
