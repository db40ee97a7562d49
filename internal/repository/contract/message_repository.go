package contract

import (
	"context"
	"time"

	"cortex-ai-be/internal/entity"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// FindByConversation returns messages in creation order.
	FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error)
	// LastCreatedAt returns nil for a conversation without messages.
	LastCreatedAt(ctx context.Context, conversationId uuid.UUID) (*time.Time, error)
	DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error
}
