package contract

import (
	"context"
	"time"

	"cortex-ai-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	// Update writes the title only; updated_at moves through Touch.
	Update(ctx context.Context, conversation *entity.Conversation) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindOwned returns nil when the conversation does not exist or belongs to someone else.
	FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Conversation, error)
	// FindPreviews lists conversations holding at least one message,
	// most recently updated first, ties broken by id.
	FindPreviews(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*entity.ConversationPreview, error)
}
