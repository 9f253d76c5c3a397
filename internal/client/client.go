// Package client is the embeddable chat client: it fetches history over
// the REST API, subscribes to the realtime channels, and funnels every
// push event into a chatstate.ChatState.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"alive-chat/internal/chatstate"
	"alive-chat/internal/localstore"
	"alive-chat/internal/models"
	"alive-chat/internal/rooms"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the chat service origin, e.g. "http://localhost:8083".
	BaseURL string
	// Token is the bearer token issued by the auth service.
	Token string
	// SelfID is the viewer's display id.
	SelfID string
	// Markers persists the explosion dedup marker. May be nil, in which
	// case MarkerDir decides.
	Markers chatstate.MarkerStore
	// MarkerDir, when Markers is nil and the dir is non-empty, opens a
	// pebble marker store there that the client owns and closes. Leaving
	// both unset disables the explosion overlay.
	MarkerDir string
	// OnChange is invoked after every visible state change. May be nil.
	OnChange func()

	// Timing overrides, zero means product defaults.
	TypingExpiry time.Duration
	LoveTTL      time.Duration
	ExplosionTTL time.Duration
}

// Client talks to the chat service on behalf of one viewer.
type Client struct {
	cfg          Config
	http         *http.Client
	state        *chatstate.ChatState
	ownedMarkers *localstore.MarkerStore

	mu       sync.Mutex
	feedConn *websocket.Conn
	feedDone chan struct{}
	roomConn *websocket.Conn
	roomDone chan struct{}
	compose  string
}

// New builds a client. Call Start to begin receiving realtime events.
func New(cfg Config) (*Client, error) {
	markers := cfg.Markers
	var owned *localstore.MarkerStore
	if markers == nil && cfg.MarkerDir != "" {
		store, err := localstore.Open(cfg.MarkerDir)
		if err != nil {
			return nil, fmt.Errorf("open marker store: %w", err)
		}
		markers = store
		owned = store
	}

	return &Client{
		cfg:          cfg,
		http:         &http.Client{Timeout: 10 * time.Second},
		ownedMarkers: owned,
		state: chatstate.New(chatstate.Settings{
			SelfID:       cfg.SelfID,
			Markers:      markers,
			OnChange:     cfg.OnChange,
			TypingExpiry: cfg.TypingExpiry,
			LoveTTL:      cfg.LoveTTL,
			ExplosionTTL: cfg.ExplosionTTL,
		}),
	}, nil
}

// State exposes the reconciled view state.
func (c *Client) State() *chatstate.ChatState {
	return c.state
}

// Start loads the inbox and opens the shared feed subscription.
func (c *Client) Start(ctx context.Context) error {
	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := c.getJSON(ctx, "/conversations", &resp); err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	c.state.SetInbox(resp.Conversations)

	conn, err := c.dial(ctx, "/ws/feed")
	if err != nil {
		return fmt.Errorf("feed subscribe: %w", err)
	}

	c.mu.Lock()
	c.feedConn = conn
	c.feedDone = make(chan struct{})
	done := c.feedDone
	c.mu.Unlock()

	go c.readLoop(conn, done)
	return nil
}

// EnterRoom activates a room: the previous room's subscription is torn
// down first, then history and reactions are fetched and the room channel
// opened.
func (c *Client) EnterRoom(ctx context.Context, roomID string) error {
	c.closeRoom()

	var msgResp struct {
		Messages []models.Message `json:"messages"`
	}
	if err := c.getJSON(ctx, "/rooms/"+roomID+"/messages", &msgResp); err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	var reactionResp struct {
		Reactions []models.Reaction `json:"reactions"`
	}
	if err := c.getJSON(ctx, "/rooms/"+roomID+"/reactions", &reactionResp); err != nil {
		return fmt.Errorf("load reactions: %w", err)
	}

	c.state.EnterRoom(roomID, msgResp.Messages, reactionResp.Reactions)

	conn, err := c.dial(ctx, "/ws/rooms/"+roomID)
	if err != nil {
		return fmt.Errorf("room subscribe: %w", err)
	}

	c.mu.Lock()
	c.roomConn = conn
	c.roomDone = make(chan struct{})
	done := c.roomDone
	c.mu.Unlock()

	go c.readLoop(conn, done)
	return nil
}

// LeaveRoom returns to the inbox, dropping room-scoped subscriptions and state.
func (c *Client) LeaveRoom() {
	c.closeRoom()
	c.state.LeaveRoom()
}

// EnterRoomFromURL resolves the room selection from a URL and navigates
// accordingly: a URL carrying a room enters it, one without returns to
// the inbox.
func (c *Client) EnterRoomFromURL(ctx context.Context, u *url.URL) error {
	roomID := rooms.Resolve(u)
	if roomID == "" {
		c.LeaveRoom()
		return nil
	}
	return c.EnterRoom(ctx, roomID)
}

// CreateRoom generates a fresh room id and enters it. The room exists
// once its first message is stored; until then it is just an id.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	roomID := rooms.GenerateID()
	if err := c.EnterRoom(ctx, roomID); err != nil {
		return "", err
	}
	return roomID, nil
}

// RoomURL rewrites u to point at the active room, clearing the selection
// when the client is on the inbox screen.
func (c *Client) RoomURL(u *url.URL) *url.URL {
	return rooms.WithRoom(u, c.state.Room())
}

// SetCompose updates the compose box contents.
func (c *Client) SetCompose(text string) {
	c.mu.Lock()
	c.compose = text
	c.mu.Unlock()
}

// Compose returns the current compose box contents.
func (c *Client) Compose() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compose
}

// SendCompose sends the compose box to the active room. The box is
// cleared only on success so a failed send can simply be retried.
func (c *Client) SendCompose(ctx context.Context, mood string) error {
	text := c.Compose()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := c.SendMessage(ctx, text, mood); err != nil {
		return err
	}
	c.SetCompose("")
	return nil
}

// SendMessage posts a message to the active room.
func (c *Client) SendMessage(ctx context.Context, text, mood string) (models.Message, error) {
	room := c.state.Room()
	if room == "" {
		return models.Message{}, fmt.Errorf("no active room")
	}

	var msg models.Message
	err := c.postJSON(ctx, "/rooms/"+room+"/messages", map[string]string{"text": text, "mood": mood}, &msg)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("send message failed")
		return models.Message{}, err
	}
	return msg, nil
}

// React appends an emoji reaction to a message in the active room.
func (c *Client) React(ctx context.Context, messageID int64, emoji string) error {
	room := c.state.Room()
	if room == "" {
		return fmt.Errorf("no active room")
	}

	path := fmt.Sprintf("/rooms/%s/messages/%d/reactions", room, messageID)
	if err := c.postJSON(ctx, path, map[string]string{"emoji": emoji}, nil); err != nil {
		log.Error().Err(err).Str("room", room).Msg("reaction failed")
		return err
	}
	return nil
}

// NotifyTyping broadcasts an ephemeral typing signal for the active room.
// Called on every keystroke; the server excludes the sender on fan-out.
func (c *Client) NotifyTyping() {
	c.mu.Lock()
	conn := c.roomConn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	event := models.RealtimeEvent{Type: models.EventTyping, Typing: &models.TypingSignal{UserID: c.cfg.SelfID}}
	if err := conn.WriteJSON(event); err != nil {
		log.Warn().Err(err).Msg("typing signal failed")
	}
}

// Close tears down all subscriptions and the state's timers.
func (c *Client) Close() {
	c.closeRoom()

	c.mu.Lock()
	conn, done := c.feedConn, c.feedDone
	c.feedConn, c.feedDone = nil, nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
		<-done
	}
	c.state.Close()

	c.mu.Lock()
	owned := c.ownedMarkers
	c.ownedMarkers = nil
	c.mu.Unlock()
	if owned != nil {
		if err := owned.Close(); err != nil {
			log.Warn().Err(err).Msg("marker store close failed")
		}
	}
}

// closeRoom tears down the active room subscription and waits for its
// reader to exit, so no stale-room event can leak into the next room.
func (c *Client) closeRoom() {
	c.mu.Lock()
	conn, done := c.roomConn, c.roomDone
	c.roomConn, c.roomDone = nil, nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
		<-done
	}
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev models.RealtimeEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Warn().Err(err).Msg("bad realtime event")
			continue
		}
		c.state.Dispatch(ev)
	}
}

func (c *Client) dial(ctx context.Context, path string) (*websocket.Conn, error) {
	wsBase := strings.Replace(c.cfg.BaseURL, "http", "ws", 1)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsBase+path+"?token="+c.cfg.Token, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
