package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"alive-chat/internal/chatstate"
	"alive-chat/internal/middleware"
	"alive-chat/internal/models"
	"alive-chat/internal/observability"
	"alive-chat/internal/repositories"
	"alive-chat/internal/telemetry"
	"alive-chat/internal/ws"
)

// lovePairWindow is the maximum gap between two love messages from
// different senders for the shared celebratory effect to fire.
const lovePairWindow = 5 * time.Minute

// ChatHandler manages conversation, message and reaction endpoints.
type ChatHandler struct {
	messageRepo  repositories.MessageRepository
	reactionRepo repositories.ReactionRepository
	effectRepo   repositories.EffectRepository
	hub          *ws.Hub
	audit        *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(messageRepo repositories.MessageRepository, reactionRepo repositories.ReactionRepository, effectRepo repositories.EffectRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		effectRepo:   effectRepo,
		hub:          hub,
		audit:        audit,
	}
}

// ListConversations returns the derived inbox: one entry per conversation,
// ordered by last activity descending.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	history, err := h.messageRepo.ListAllNewestFirst(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": chatstate.BuildInbox(history)})
}

// GetRoomMessages returns a room's full history, oldest first.
func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	msgs, err := h.messageRepo.ListByConversation(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostRoomMessage stores a message, broadcasts it, and performs the
// love-pair check when the message classifies as love.
func (h *ChatHandler) PostRoomMessage(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetString(middleware.CtxUserID)

	var req struct {
		Text string `json:"text" binding:"required"`
		Mood string `json:"mood"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}
	if req.Mood == "" {
		req.Mood = models.MoodNormal
	}
	if !models.ValidMood(req.Mood) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mood"})
		return
	}

	kind := models.KindFromText(req.Text)
	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), roomID, userID, req.Text, kind, req.Mood)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessageSent(kind, req.Mood)
	h.hub.BroadcastMessage(msg)

	if kind == models.KindLove {
		h.checkLovePair(c, roomID)
	}

	c.JSON(http.StatusCreated, msg)
}

// checkLovePair writes a shared love_pair effect when the room's two most
// recent messages are love messages from different senders within the
// window. Best effort: failures are logged, never surfaced to the sender.
func (h *ChatHandler) checkLovePair(c *gin.Context, roomID string) {
	last, err := h.messageRepo.LastTwo(c.Request.Context(), roomID)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("love pair check failed")
		return
	}
	if len(last) != 2 {
		return
	}

	newest, previous := last[0], last[1]
	bothLove := newest.Kind == models.KindLove && previous.Kind == models.KindLove &&
		newest.SenderID != previous.SenderID
	withinWindow := newest.CreatedAt.Sub(previous.CreatedAt) < lovePairWindow
	if !bothLove || !withinWindow {
		return
	}

	effect, err := h.effectRepo.CreateEffect(c.Request.Context(), roomID, models.EffectLovePair, nil)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("love pair effect insert failed")
		return
	}

	observability.IncEffectTriggered(models.EffectLovePair)
	h.hub.BroadcastEffect(effect)
	h.audit.Emit(c.Request.Context(), "INFO", "love_pair effect triggered", requestIDFromContext(c), userIDFromContext(c))
}

// GetRoomReactions returns every reaction of a room in insert order.
func (h *ChatHandler) GetRoomReactions(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	reactions, err := h.reactionRepo.ListByConversation(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

// PostReaction appends an emoji reaction to a message and broadcasts it.
// Duplicate reactions from the same user are allowed.
func (h *ChatHandler) PostReaction(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	userID := c.GetString(middleware.CtxUserID)

	var req struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.ConversationID != roomID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to room"})
		return
	}

	reaction, err := h.reactionRepo.CreateReaction(c.Request.Context(), roomID, messageID, userID, req.Emoji)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reaction"})
		return
	}

	h.hub.BroadcastReaction(reaction)
	c.JSON(http.StatusCreated, reaction)
}

func parseRoomID(c *gin.Context) (string, bool) {
	roomID := strings.TrimSpace(c.Param("room_id"))
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return "", false
	}
	return roomID, true
}
