package rooms

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"no room", "https://chat.example.com/", ""},
		{"empty room", "https://chat.example.com/?room=", ""},
		{"room selected", "https://chat.example.com/?room=room-ab12cd", "room-ab12cd"},
		{"whitespace trimmed", "https://chat.example.com/?room=%20room-ab12cd%20", "room-ab12cd"},
		{"other params ignored", "https://chat.example.com/?theme=dark&room=room-xy98zw", "room-xy98zw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(mustParse(t, tt.url)))
		})
	}
}

func TestResolveNilURL(t *testing.T) {
	assert.Equal(t, "", Resolve(nil))
}

func TestWithRoomDoesNotMutateInput(t *testing.T) {
	in := mustParse(t, "https://chat.example.com/?theme=dark")
	out := WithRoom(in, "room-ab12cd")

	assert.Equal(t, "room-ab12cd", Resolve(out))
	assert.Equal(t, "", Resolve(in))
	assert.Equal(t, "dark", out.Query().Get("theme"))
}

func TestWithRoomEmptyClearsSelection(t *testing.T) {
	in := mustParse(t, "https://chat.example.com/?room=room-ab12cd")
	out := WithRoom(in, "")
	assert.Equal(t, "", Resolve(out))
}

func TestWithRoomRoundTrips(t *testing.T) {
	in := mustParse(t, "https://chat.example.com/")
	out := WithRoom(WithRoom(in, "room-ab12cd"), "room-ef34gh")
	assert.Equal(t, "room-ef34gh", Resolve(out))
}

func TestGenerateIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^room-[a-z0-9]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateID()
		require.Regexp(t, pattern, id)
		seen[id] = true
	}
	// Not a uniqueness guarantee, just a sanity check that the ids vary.
	assert.Greater(t, len(seen), 1)
}
