package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"alive-chat/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID, senderID, text, kind, mood string) (models.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	ListAllNewestFirst(ctx context.Context) ([]models.Message, error)
	LastTwo(ctx context.Context, conversationID string) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int64) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_id, text, type, mood, created_at`

// CreateMessage stores a message in a conversation.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID, senderID, text, kind, mood string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, text, type, mood)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING `+messageColumns,
		conversationID, senderID, text, kind, mood).
		Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Text, &msg.Kind, &msg.Mood, &msg.CreatedAt)
	return msg, err
}

// ListByConversation returns the full history of one conversation, oldest first.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC, id ASC`,
		conversationID)
	return msgs, err
}

// ListAllNewestFirst returns the flat history across all conversations,
// newest first. The inbox list is derived from this.
func (r *MessageRepo) ListAllNewestFirst(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id DESC`)
	return msgs, err
}

// LastTwo returns the two most recent messages of a conversation, newest first.
func (r *MessageRepo) LastTwo(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE conversation_id=$1 ORDER BY created_at DESC, id DESC LIMIT 2`,
		conversationID)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
