package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"alive-chat/internal/auth"
	"alive-chat/internal/models"
	"alive-chat/internal/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoomWebSocketHandler serves the per-room realtime channel: reaction and
// effect inserts flow out, typing signals flow in and are rebroadcast to
// the room without the sender.
type RoomWebSocketHandler struct {
	hub       *Hub
	validator auth.TokenValidator
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(hub *Hub, validator auth.TokenValidator) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades the connection and registers the client on the room.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	roomID := strings.TrimSpace(c.Param("room_id"))
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	conn, info, ok := handshake(c, h.validator)
	if !ok {
		return
	}
	h.hub.AddRoomClient(roomID, conn, info)

	observability.IncWSActive(ChannelRoom)
	observability.IncWSEvent(ChannelRoom, "ws_connect")
	publishLifecycle(c.Request.Context(), ChannelRoom, roomID, info, "ws_connect", "", 0)

	go func() {
		var closeReason string
		ctx := context.Background()
		defer func() {
			h.hub.RemoveRoomClient(roomID, conn)
			observability.DecWSActive(ChannelRoom)
			observability.IncWSEvent(ChannelRoom, "ws_disconnect")
			publishLifecycle(ctx, ChannelRoom, roomID, info, "ws_disconnect", closeReason, time.Since(info.ConnectedAt))
			conn.Close()
		}()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(ChannelRoom, "ws_error")
					publishLifecycle(ctx, ChannelRoom, roomID, info, "ws_error", closeReason, time.Since(info.ConnectedAt))
				}
				return
			}

			var ev models.RealtimeEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				continue
			}
			if ev.Type == models.EventTyping {
				// Trust the authenticated identity, not the frame payload.
				h.hub.BroadcastTyping(roomID, conn, info.UserID)
				observability.IncWSEvent(ChannelRoom, "typing")
			}
		}
	}()
}

// handshake traces the upgrade, validates the caller's token and builds
// the connection's ConnInfo. A false result means a response was already
// written.
func handshake(c *gin.Context, validator auth.TokenValidator) (*websocket.Conn, ConnInfo, bool) {
	ctx, span := otel.Tracer("alive-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	user, err := validateToken(c.Request.Context(), validator, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return nil, ConnInfo{}, false
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return nil, ConnInfo{}, false
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.DisplayID(),
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	return conn, info, true
}

func validateToken(ctx context.Context, validator auth.TokenValidator, header string) (auth.User, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return validator.ValidateToken(ctx, parts[1])
	}
	return auth.User{}, fmt.Errorf("invalid token")
}

func publishLifecycle(ctx context.Context, channel, roomID string, info ConnInfo, event, reason string, connected time.Duration) {
	_ = observability.PublishEvent(ctx, routingKey(channel), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   lifecyclePayload(channel, roomID, info, event, reason, connected),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
