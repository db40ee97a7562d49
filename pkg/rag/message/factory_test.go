package message

import (
	"context"
	"testing"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/repository/memory"
	"cortex-ai-be/pkg/contextref"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTimestamp(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactoryWithClock(func() time.Time { return fixed })

	tests := []struct {
		name string
		last *time.Time
		want time.Time
	}{
		{name: "first message", last: nil, want: fixed},
		{name: "clock ahead", last: ptr(fixed.Add(-time.Second)), want: fixed},
		{name: "same instant", last: ptr(fixed), want: fixed.Add(Tick)},
		{name: "clock behind", last: ptr(fixed.Add(time.Hour)), want: fixed.Add(time.Hour + Tick)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(f.NextTimestamp(tt.last)))
		})
	}
}

func TestAppendKeepsStrictOrder(t *testing.T) {
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactoryWithClock(func() time.Time { return fixed })

	conversation := &entity.Conversation{UserId: uuid.New(), Title: "t"}
	require.NoError(t, factory.NewUnitOfWork(context.Background()).ConversationRepository().Create(context.Background(), conversation))

	ref := contextref.NoteRef{Id: uuid.New()}
	for i := 0; i < 3; i++ {
		msg := f.CreateUserMessage(conversation.Id, "hello", []contextref.Reference{ref})
		require.NoError(t, f.Append(context.Background(), factory, &msg))
	}

	messages, err := factory.NewUnitOfWork(context.Background()).MessageRepository().FindByConversation(context.Background(), conversation.Id)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i].CreatedAt.After(messages[i-1].CreatedAt))
	}
	assert.Equal(t, []entity.ReferenceSnapshot{{EntityType: "note", EntityId: ref.Id}}, messages[0].References)

	updated, err := factory.NewUnitOfWork(context.Background()).ConversationRepository().FindOwned(context.Background(), conversation.Id, conversation.UserId)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(messages[2].CreatedAt))
}

func ptr(t time.Time) *time.Time {
	return &t
}
