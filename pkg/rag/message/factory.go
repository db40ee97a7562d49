package message

import (
	"context"
	"time"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/contextref"

	"github.com/google/uuid"
)

// Tick is the smallest step between two messages of one conversation.
const Tick = time.Microsecond

// Factory creates messages and appends them to a conversation log.
type Factory struct {
	now func() time.Time
}

func NewFactory() *Factory {
	return &Factory{now: time.Now}
}

// NewFactoryWithClock is NewFactory with a fixed time source.
func NewFactoryWithClock(now func() time.Time) *Factory {
	return &Factory{now: now}
}

// NextTimestamp returns the current time, or last+Tick when the clock has not moved past last.
func (f *Factory) NextTimestamp(last *time.Time) time.Time {
	now := f.now().UTC().Truncate(Tick)
	if last != nil && !now.After(*last) {
		return last.UTC().Add(Tick)
	}
	return now
}

func (f *Factory) CreateUserMessage(conversationId uuid.UUID, content string, refs []contextref.Reference) entity.Message {
	return entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           constant.ChatMessageRoleUser,
		Content:        content,
		References:     Snapshot(refs),
	}
}

func (f *Factory) CreateAssistantMessage(conversationId uuid.UUID, content string, refs []contextref.Reference) entity.Message {
	return entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           constant.ChatMessageRoleAssistant,
		Content:        content,
		References:     Snapshot(refs),
	}
}

// Append stamps message after the conversation's latest message, stores it and
// advances the conversation's updated_at, all inside one transaction.
func (f *Factory) Append(ctx context.Context, uowFactory unitofwork.RepositoryFactory, message *entity.Message) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	last, err := uow.MessageRepository().LastCreatedAt(ctx, message.ConversationId)
	if err != nil {
		return err
	}
	message.CreatedAt = f.NextTimestamp(last)

	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Touch(ctx, message.ConversationId, message.CreatedAt); err != nil {
		return err
	}
	return uow.Commit()
}

func Snapshot(refs []contextref.Reference) []entity.ReferenceSnapshot {
	out := make([]entity.ReferenceSnapshot, 0, len(refs))
	for _, r := range refs {
		out = append(out, entity.ReferenceSnapshot{EntityType: string(r.Type()), EntityId: r.ID()})
	}
	return out
}
