package history

import (
	"context"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/llm"

	"github.com/google/uuid"
)

// Loader reads a conversation's message log for the prompt.
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewLoader(uowFactory unitofwork.RepositoryFactory) *Loader {
	return &Loader{
		uowFactory: uowFactory,
	}
}

// LoadConversationHistory returns every message of the conversation, oldest first.
func (l *Loader) LoadConversationHistory(ctx context.Context, conversationId uuid.UUID) ([]llm.Message, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.MessageRepository().FindByConversation(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	return ToLLMMessages(messages), nil
}

func ToLLMMessages(messages []*entity.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		switch role {
		case constant.ChatMessageRoleUser, constant.ChatMessageRoleAssistant, constant.ChatMessageRoleSystem:
		default:
			role = constant.ChatMessageRoleUser
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
