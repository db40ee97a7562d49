package contract

import (
	"context"

	"cortex-ai-be/internal/entity"

	"github.com/google/uuid"
)

type ContextReferenceRepository interface {
	// Create reports apperror.ErrDuplicateReference when the key is already attached.
	Create(ctx context.Context, ref *entity.ContextReference) error
	// Delete reports apperror.ErrNotFound when nothing matched.
	Delete(ctx context.Context, conversationId uuid.UUID, entityType string, entityId uuid.UUID) error
	DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error
	FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.ContextReference, error)
	FindByConversations(ctx context.Context, conversationIds []uuid.UUID) ([]*entity.ContextReference, error)
}
