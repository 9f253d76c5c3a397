package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"alive-chat/internal/models"
	"alive-chat/internal/observability"
)

// Channel kinds, used as metric and routing labels.
const (
	ChannelFeed = "feed"
	ChannelRoom = "room"
)

// Hub maintains the active websocket subscriptions: one global feed
// carrying message inserts for every room (drives the inbox), and
// per-room channels carrying reaction inserts, effect inserts and
// ephemeral typing broadcasts.
type Hub struct {
	rooms map[string]map[*websocket.Conn]ConnInfo
	feed  map[*websocket.Conn]ConnInfo
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]ConnInfo),
		feed:  make(map[*websocket.Conn]ConnInfo),
	}
}

// AddFeedClient registers a connection on the global feed.
func (h *Hub) AddFeedClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feed[conn] = info
}

// RemoveFeedClient removes a feed connection.
func (h *Hub) RemoveFeedClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.feed, conn)
}

// AddRoomClient registers a connection to a room channel.
func (h *Hub) AddRoomClient(roomID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.rooms[roomID][conn] = info
}

// RemoveRoomClient removes a room connection.
func (h *Hub) RemoveRoomClient(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastMessage echoes a stored message insert to every feed client.
// Clients decide themselves whether it belongs to their open room or only
// updates their inbox.
func (h *Hub) BroadcastMessage(msg models.Message) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.feed))
	for conn := range h.feed {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	event := models.RealtimeEvent{Type: models.EventMessage, Message: &msg}
	h.write(ChannelFeed, "", conns, event, nil)
}

// BroadcastReaction echoes a reaction insert to the room's clients.
func (h *Hub) BroadcastReaction(r models.Reaction) {
	event := models.RealtimeEvent{Type: models.EventReaction, Reaction: &r}
	h.write(ChannelRoom, r.ConversationID, h.roomConns(r.ConversationID), event, nil)
}

// BroadcastEffect echoes an effect insert to the room's clients.
func (h *Hub) BroadcastEffect(e models.Effect) {
	event := models.RealtimeEvent{Type: models.EventEffect, Effect: &e}
	h.write(ChannelRoom, e.ConversationID, h.roomConns(e.ConversationID), event, nil)
}

// BroadcastTyping rebroadcasts an ephemeral typing signal to the room,
// excluding the sending connection. Nothing is persisted.
func (h *Hub) BroadcastTyping(roomID string, from *websocket.Conn, userID string) {
	event := models.RealtimeEvent{Type: models.EventTyping, Typing: &models.TypingSignal{UserID: userID}}
	h.write(ChannelRoom, roomID, h.roomConns(roomID), event, from)
}

func (h *Hub) roomConns(roomID string) []*websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[roomID]))
	for conn := range h.rooms[roomID] {
		conns = append(conns, conn)
	}
	return conns
}

func (h *Hub) write(channel, roomID string, conns []*websocket.Conn, event models.RealtimeEvent, exclude *websocket.Conn) {
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if conn == exclude {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("websocket write error")
			// ConnInfo must be captured before the drop removes it.
			info, known := h.connInfo(channel, roomID, conn)
			conn.Close()
			h.drop(channel, roomID, conn)
			if known {
				h.publishWSError(channel, roomID, info, err)
			}
		}
	}
}

func (h *Hub) drop(channel, roomID string, conn *websocket.Conn) {
	if channel == ChannelFeed {
		h.RemoveFeedClient(conn)
		return
	}
	h.RemoveRoomClient(roomID, conn)
}

func (h *Hub) publishWSError(channel, roomID string, info ConnInfo, err error) {
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), routingKey(channel), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   lifecyclePayload(channel, roomID, info, "ws_error", err.Error(), time.Since(info.ConnectedAt)),
	}, headers)
	observability.IncWSEvent(channel, "ws_error")
}

func (h *Hub) connInfo(channel, roomID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if channel == ChannelFeed {
		info, exists := h.feed[conn]
		return info, exists
	}
	if infos, ok := h.rooms[roomID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func routingKey(channel string) string {
	if channel == ChannelFeed {
		return "ws_events.feed"
	}
	return "ws_events.rooms"
}

func lifecyclePayload(channel, roomID string, info ConnInfo, event, reason string, connected time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"channel":     channel,
			"room_id":     roomID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": connected.Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
