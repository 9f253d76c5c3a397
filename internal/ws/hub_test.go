package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"alive-chat/internal/models"
	"alive-chat/internal/observability"
)

func TestHubAddAndRemoveFeedClient(t *testing.T) {
	hub := NewHub()

	hub.AddFeedClient(nil, ConnInfo{UserID: "ana"})
	if len(hub.feed) != 1 {
		t.Fatalf("expected feed client to be registered")
	}

	hub.RemoveFeedClient(nil)
	if len(hub.feed) != 0 {
		t.Fatalf("expected feed client to be removed")
	}
}

func TestHubAddAndRemoveRoomClient(t *testing.T) {
	hub := NewHub()

	hub.AddRoomClient("room-ab12cd", nil, ConnInfo{UserID: "ana"})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}

	hub.RemoveRoomClient("room-ab12cd", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected empty room to be dropped")
	}
}

func TestHubRoomSurvivesUntilLastClientLeaves(t *testing.T) {
	hub := NewHub()

	c1 := new(websocket.Conn)
	c2 := new(websocket.Conn)
	hub.AddRoomClient("room-ab12cd", c1, ConnInfo{UserID: "ana"})
	hub.AddRoomClient("room-ab12cd", c2, ConnInfo{UserID: "bruno"})

	hub.RemoveRoomClient("room-ab12cd", c1)
	if len(hub.rooms["room-ab12cd"]) != 1 {
		t.Fatalf("expected one remaining client")
	}

	hub.RemoveRoomClient("room-ab12cd", c2)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be dropped with its last client")
	}
}

type capturePublisher struct {
	mu     sync.Mutex
	events []observability.EventEnvelope
}

func (p *capturePublisher) PublishJSON(_ context.Context, _ string, message interface{}, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if env, ok := message.(observability.EventEnvelope); ok {
		p.events = append(p.events, env)
	}
	return nil
}

func (p *capturePublisher) captured() []observability.EventEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]observability.EventEnvelope, len(p.events))
	copy(out, p.events)
	return out
}

// dialTestConn returns the server side of a live websocket connection.
func dialTestConn(t *testing.T) *websocket.Conn {
	t.Helper()
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { client.Close() })
	return <-serverConns
}

func TestHubWriteErrorDropsClientAndPublishesEvent(t *testing.T) {
	pub := &capturePublisher{}
	observability.SetPublisher(pub)
	defer observability.SetPublisher(nil)

	hub := NewHub()
	conn := dialTestConn(t)
	hub.AddRoomClient("room-ab12cd", conn, ConnInfo{ConnID: "c1", UserID: "ana", ConnectedAt: time.Now()})

	// Force the broadcast write to fail.
	conn.Close()
	hub.BroadcastReaction(models.Reaction{ID: 1, ConversationID: "room-ab12cd", MessageID: 1, UserID: "bruno", Emoji: "❤️"})

	if len(hub.rooms) != 0 {
		t.Fatalf("expected failed connection to be dropped")
	}

	events := pub.captured()
	if len(events) != 1 {
		t.Fatalf("expected one published event, got %d", len(events))
	}
	if events[0].EventName != "ws_error" {
		t.Fatalf("expected ws_error event, got %q", events[0].EventName)
	}
}
