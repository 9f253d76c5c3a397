package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"alive-chat/internal/models"
)

// ReactionRepository defines interactions for message reactions.
type ReactionRepository interface {
	CreateReaction(ctx context.Context, conversationID string, messageID int64, userID, emoji string) (models.Reaction, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.Reaction, error)
}

// ReactionRepo is a sqlx-backed repository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

const reactionColumns = `id, conversation_id, message_id, user_id, emoji, created_at`

// CreateReaction appends a reaction row. There is no uniqueness constraint:
// the same user may react with the same emoji more than once.
func (r *ReactionRepo) CreateReaction(ctx context.Context, conversationID string, messageID int64, userID, emoji string) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO message_reactions (conversation_id, message_id, user_id, emoji)
         VALUES ($1, $2, $3, $4)
         RETURNING `+reactionColumns,
		conversationID, messageID, userID, emoji).
		Scan(&reaction.ID, &reaction.ConversationID, &reaction.MessageID, &reaction.UserID, &reaction.Emoji, &reaction.CreatedAt)
	return reaction, err
}

// ListByConversation returns every reaction in a conversation in insert order.
func (r *ReactionRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.SelectContext(ctx, &reactions,
		`SELECT `+reactionColumns+` FROM message_reactions WHERE conversation_id=$1 ORDER BY created_at ASC, id ASC`,
		conversationID)
	return reactions, err
}
