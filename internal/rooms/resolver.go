// Package rooms maps URLs to conversation identifiers. Resolution is kept
// pure: functions take the current URL and return the new one instead of
// mutating ambient state.
package rooms

import (
	"crypto/rand"
	"net/url"
	"strings"
)

// QueryParam is the URL query parameter selecting the active conversation.
// An absent or empty value routes to the inbox screen.
const QueryParam = "room"

const (
	idPrefix   = "room-"
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 6
)

// Resolve extracts the active room id from a URL. An empty result means
// no room is selected.
func Resolve(u *url.URL) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get(QueryParam))
}

// WithRoom returns a copy of the URL pointing at the given room. An empty
// room id clears the parameter, resolving back to the inbox.
func WithRoom(u *url.URL, roomID string) *url.URL {
	out := *u
	q := out.Query()
	if roomID == "" {
		q.Del(QueryParam)
	} else {
		q.Set(QueryParam, roomID)
	}
	out.RawQuery = q.Encode()
	return &out
}

// GenerateID produces a human-readable random room id: a fixed prefix plus
// six lowercase-alphanumeric characters. Collisions are not guarded against.
func GenerateID() string {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return idPrefix + "000000"
	}
	var b strings.Builder
	b.WriteString(idPrefix)
	for _, c := range buf {
		b.WriteByte(idAlphabet[int(c)%len(idAlphabet)])
	}
	return b.String()
}
