package repositories

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"alive-chat/internal/models"
)

// EffectRepository defines interactions for transient effect rows.
type EffectRepository interface {
	CreateEffect(ctx context.Context, conversationID, kind string, payload json.RawMessage) (models.Effect, error)
}

// EffectRepo is a sqlx-backed repository.
type EffectRepo struct {
	db *sqlx.DB
}

// NewEffectRepo constructs EffectRepo.
func NewEffectRepo(db *sqlx.DB) *EffectRepo {
	return &EffectRepo{db: db}
}

// CreateEffect stores an effect signal row. Effects are written once,
// delivered to whoever is connected, and never read back.
func (r *EffectRepo) CreateEffect(ctx context.Context, conversationID, kind string, payload json.RawMessage) (models.Effect, error) {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	var effect models.Effect
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO effects (conversation_id, type, payload)
         VALUES ($1, $2, $3)
         RETURNING id, conversation_id, type, payload, created_at`,
		conversationID, kind, []byte(payload)).
		Scan(&effect.ID, &effect.ConversationID, &effect.Kind, (*[]byte)(&effect.Payload), &effect.CreatedAt)
	return effect, err
}
