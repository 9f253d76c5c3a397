package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"alive-chat/internal/auth"
	"alive-chat/internal/models"
	"alive-chat/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID, senderID, text, kind, mood string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, text, kind, mood)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListAllNewestFirst(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) LastTwo(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) CreateReaction(ctx context.Context, conversationID string, messageID int64, userID, emoji string) (models.Reaction, error) {
	args := m.Called(ctx, conversationID, messageID, userID, emoji)
	var reaction models.Reaction
	if val := args.Get(0); val != nil {
		reaction = val.(models.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *ReactionRepositoryMock) ListByConversation(ctx context.Context, conversationID string) ([]models.Reaction, error) {
	args := m.Called(ctx, conversationID)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

type EffectRepositoryMock struct {
	mock.Mock
}

func (m *EffectRepositoryMock) CreateEffect(ctx context.Context, conversationID, kind string, payload json.RawMessage) (models.Effect, error) {
	args := m.Called(ctx, conversationID, kind, payload)
	var effect models.Effect
	if val := args.Get(0); val != nil {
		effect = val.(models.Effect)
	}
	return effect, args.Error(1)
}

type TokenValidatorMock struct {
	mock.Mock
}

func (m *TokenValidatorMock) ValidateToken(ctx context.Context, token string) (auth.User, error) {
	args := m.Called(ctx, token)
	var user auth.User
	if val := args.Get(0); val != nil {
		user = val.(auth.User)
	}
	return user, args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)
var _ repositories.EffectRepository = (*EffectRepositoryMock)(nil)
var _ auth.TokenValidator = (*TokenValidatorMock)(nil)
