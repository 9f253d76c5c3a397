package ws

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"alive-chat/internal/auth"
	"alive-chat/internal/observability"
)

// FeedWebSocketHandler serves the single shared message subscription
// covering all rooms. Clients use it for both the inbox list and the
// active room's appends; inbound frames are ignored.
type FeedWebSocketHandler struct {
	hub       *Hub
	validator auth.TokenValidator
}

// NewFeedWebSocketHandler constructs a FeedWebSocketHandler.
func NewFeedWebSocketHandler(hub *Hub, validator auth.TokenValidator) *FeedWebSocketHandler {
	return &FeedWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades the connection and registers the client on the feed.
func (h *FeedWebSocketHandler) Handle(c *gin.Context) {
	conn, info, ok := handshake(c, h.validator)
	if !ok {
		return
	}
	h.hub.AddFeedClient(conn, info)

	observability.IncWSActive(ChannelFeed)
	observability.IncWSEvent(ChannelFeed, "ws_connect")
	publishLifecycle(c.Request.Context(), ChannelFeed, "", info, "ws_connect", "", 0)

	go func() {
		var closeReason string
		ctx := context.Background()
		defer func() {
			h.hub.RemoveFeedClient(conn)
			observability.DecWSActive(ChannelFeed)
			observability.IncWSEvent(ChannelFeed, "ws_disconnect")
			publishLifecycle(ctx, ChannelFeed, "", info, "ws_disconnect", closeReason, time.Since(info.ConnectedAt))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(ChannelFeed, "ws_error")
					publishLifecycle(ctx, ChannelFeed, "", info, "ws_error", closeReason, time.Since(info.ConnectedAt))
				}
				return
			}
		}
	}()
}
