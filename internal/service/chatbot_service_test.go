package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/dto"
	"cortex-ai-be/internal/entity"
	"cortex-ai-be/pkg/apperror"
	"cortex-ai-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) messages(t *testing.T, conversationId uuid.UUID) []*entity.Message {
	t.Helper()
	ctx := context.Background()
	messages, err := h.uowFactory.NewUnitOfWork(ctx).MessageRepository().FindByConversation(ctx, conversationId)
	require.NoError(t, err)
	return messages
}

func TestSendMessageWithNothingToGroundOn(t *testing.T) {
	h := newHarness()
	userId := uuid.New()

	res, err := h.chat.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Content: "Explain X"})
	require.NoError(t, err)

	prompt := h.provider.lastPrompt()
	assert.Contains(t, prompt, constant.PromptNoContext)
	assert.Contains(t, prompt, constant.PromptNoHistory)
	assert.True(t, strings.HasSuffix(prompt, "Explain X"))
	assert.Less(t, strings.Index(prompt, constant.PromptNoContext), strings.Index(prompt, constant.PromptNoHistory))

	assert.Equal(t, "Explain X", res.ConversationTitle)
	assert.Equal(t, "Here is the answer.", res.Reply.Content)
	assert.Empty(t, res.Context)

	messages := h.messages(t, res.ConversationId)
	require.Len(t, messages, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, messages[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, messages[1].Role)
	assert.True(t, messages[1].CreatedAt.After(messages[0].CreatedAt))
}

func TestSendMessageGenerationFailureKeepsUserMessage(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.provider.err = errors.New("model unavailable")

	conversation, err := h.chat.CreateConversation(context.Background(), userId, &dto.CreateConversationRequest{})
	require.NoError(t, err)

	_, err = h.chat.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: &conversation.Id,
		Content:        "Explain X",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUpstreamGeneration)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, conversation.Id.String(), appErr.Details["conversation_id"])

	messages := h.messages(t, conversation.Id)
	require.Len(t, messages, 1)
	assert.Equal(t, constant.ChatMessageRoleUser, messages[0].Role)
	assert.Equal(t, appErr.Details["user_message_id"], messages[0].Id.String())
}

func TestSendMessageHistoryExcludesCurrentMessage(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()

	first, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{Content: "first question"})
	require.NoError(t, err)

	_, err = h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{
		ConversationId: &first.ConversationId,
		Content:        "second question",
	})
	require.NoError(t, err)

	prompt := h.provider.lastPrompt()
	assert.Contains(t, prompt, "USER: first question")
	assert.Contains(t, prompt, "ASSISTANT: Here is the answer.")
	assert.NotContains(t, prompt, "USER: second question")
	assert.True(t, strings.HasSuffix(prompt, "second question"))
	assert.Len(t, h.messages(t, first.ConversationId), 4)
}

func TestSendMessageAttachesReferencesAndSummarizes(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	folder := h.store.PutFolder(entity.Folder{UserId: userId, Name: "F"})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.store.PutNote(entity.Note{UserId: userId, Title: "A", Content: "hi", FolderId: &folder.Id, CreatedAt: base})
	h.store.PutNote(entity.Note{UserId: userId, Title: "B", Content: "bye", FolderId: &folder.Id, CreatedAt: base.Add(time.Minute)})

	res, err := h.chat.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		Content: "Summarize the folder",
		References: []dto.ContextReferenceDTO{
			{EntityType: "folder", EntityId: folder.Id},
			{EntityType: "folder", EntityId: folder.Id},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Context, 1)
	assert.Equal(t, "Folder: F", res.Context[0].Title)
	assert.Contains(t, res.Context[0].Body, "- A\nhi")
	assert.Contains(t, res.Context[0].Body, "- B\nbye")
	assert.Contains(t, h.provider.lastPrompt(), "### Folder: F\n")

	require.Len(t, res.Sent.References, 1)
	assert.Equal(t, folder.Id, res.Sent.References[0].EntityId)

	got, err := h.chat.GetConversation(context.Background(), userId, res.ConversationId)
	require.NoError(t, err)
	require.Len(t, got.References, 1)
	assert.Equal(t, "F", got.References[0].Title)
	assert.True(t, *got.References[0].Available)
	assert.Len(t, got.Messages, 2)
}

func TestSendMessageValidation(t *testing.T) {
	h := newHarness()
	userId := uuid.New()

	tests := []struct {
		name string
		req  *dto.SendMessageRequest
		want error
	}{
		{name: "empty content", req: &dto.SendMessageRequest{Content: "  \n "}, want: apperror.ErrValidation},
		{name: "bad reference type", req: &dto.SendMessageRequest{
			Content:    "hi",
			References: []dto.ContextReferenceDTO{{EntityType: "tag", EntityId: uuid.New()}},
		}, want: apperror.ErrValidation},
		{name: "unknown conversation", req: &dto.SendMessageRequest{
			Content:        "hi",
			ConversationId: ptrUUID(uuid.New()),
		}, want: apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.chat.SendMessage(context.Background(), userId, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, h.provider.prompts)
}

func TestSendMessageRejectsForeignAndMissingReferences(t *testing.T) {
	h := newHarness()
	alice := uuid.New()
	ctx := context.Background()
	bobsNote := h.store.PutNote(entity.Note{UserId: uuid.New(), Title: "Bob's", Content: "private"})

	conversation, err := h.chat.CreateConversation(ctx, alice, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  dto.ContextReferenceDTO
	}{
		{name: "another user's note", ref: dto.ContextReferenceDTO{EntityType: "note", EntityId: bobsNote.Id}},
		{name: "unknown folder", ref: dto.ContextReferenceDTO{EntityType: "folder", EntityId: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.chat.SendMessage(ctx, alice, &dto.SendMessageRequest{
				ConversationId: &conversation.Id,
				Content:        "what does it say?",
				References:     []dto.ContextReferenceDTO{tt.ref},
			})
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}

	got, err := h.chat.GetConversation(ctx, alice, conversation.Id)
	require.NoError(t, err)
	assert.Empty(t, got.References)
	assert.Empty(t, got.Messages)
	assert.Empty(t, h.provider.prompts)
}

func TestSendMessageResetStartsNewConversation(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()

	first, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{Content: "one"})
	require.NoError(t, err)

	second, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{
		ConversationId: &first.ConversationId,
		Content:        "two",
		Title:          "Fresh start",
		Reset:          true,
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.ConversationId, second.ConversationId)
	assert.Equal(t, "Fresh start", second.ConversationTitle)
	assert.Len(t, h.messages(t, first.ConversationId), 2)
}

func TestSendMessageRetitlesDraft(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()

	draft, err := h.chat.CreateConversation(ctx, userId, nil)
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultConversationTitle, draft.Title)

	long := strings.Repeat("word ", 30)
	res, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{ConversationId: &draft.Id, Content: long})
	require.NoError(t, err)

	assert.Equal(t, draft.Id, res.ConversationId)
	assert.LessOrEqual(t, len([]rune(res.ConversationTitle)), constant.TitlePrefixLength)
	assert.True(t, strings.HasPrefix(long, res.ConversationTitle))
	assert.Contains(t, h.publisher.types(), events.ConversationRenamed)
}

func TestSendMessageRateLimited(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.chat.(*chatbotService).limiter = newTightLimiter()

	_, err := h.chat.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Content: "one"})
	require.NoError(t, err)

	_, err = h.chat.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Content: "two"})
	assert.ErrorIs(t, err, apperror.ErrRateLimited)
}

func TestListConversationsPaginationIsComplete(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()

	want := map[uuid.UUID]bool{}
	for i := 0; i < 7; i++ {
		res, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{Content: fmt.Sprintf("question %d", i)})
		require.NoError(t, err)
		want[res.ConversationId] = true
	}
	// Drafts never show up in listings.
	_, err := h.chat.CreateConversation(ctx, userId, &dto.CreateConversationRequest{Title: "draft"})
	require.NoError(t, err)
	// Someone else's conversation is invisible.
	_, err = h.chat.SendMessage(ctx, uuid.New(), &dto.SendMessageRequest{Content: "not yours"})
	require.NoError(t, err)

	for _, limit := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			seen := map[uuid.UUID]int{}
			for offset := 0; ; offset += limit {
				page, err := h.chat.ListConversations(ctx, userId, &dto.ListConversationsRequest{Offset: offset, Limit: limit})
				require.NoError(t, err)
				for _, p := range page {
					seen[p.Id]++
					assert.Equal(t, int64(2), p.MessageCount)
				}
				if len(page) < limit {
					break
				}
			}
			assert.Len(t, seen, len(want))
			for id, n := range seen {
				assert.True(t, want[id])
				assert.Equal(t, 1, n)
			}
		})
	}
}

func TestListConversationsOrderAndLimits(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 12; i++ {
		res, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{Content: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
		ids = append(ids, res.ConversationId)
	}

	page, err := h.chat.ListConversations(ctx, userId, &dto.ListConversationsRequest{})
	require.NoError(t, err)
	require.Len(t, page, constant.ListConversationsDefaultLimit)
	assert.Equal(t, ids[11], page[0].Id, "most recently active first")

	page, err = h.chat.ListConversations(ctx, userId, &dto.ListConversationsRequest{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, page, constant.ListConversationsMaxLimit)

	// New activity moves a conversation to the top.
	_, err = h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{ConversationId: &ids[0], Content: "again"})
	require.NoError(t, err)
	page, err = h.chat.ListConversations(ctx, userId, nil)
	require.NoError(t, err)
	assert.Equal(t, ids[0], page[0].Id)
}

func TestRenameConversation(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()

	conversation, err := h.chat.CreateConversation(ctx, userId, &dto.CreateConversationRequest{Title: "  Plans  "})
	require.NoError(t, err)
	assert.Equal(t, "Plans", conversation.Title)

	_, err = h.chat.RenameConversation(ctx, userId, conversation.Id, &dto.RenameConversationRequest{Title: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = h.chat.RenameConversation(ctx, uuid.New(), conversation.Id, &dto.RenameConversationRequest{Title: "Mine"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	note := h.store.PutNote(entity.Note{UserId: userId, Title: "Roadmap", Content: "c"})
	_, err = h.context.AddReference(ctx, userId, conversation.Id, &dto.AddContextReferenceRequest{EntityType: "note", EntityId: note.Id})
	require.NoError(t, err)

	renamed, err := h.chat.RenameConversation(ctx, userId, conversation.Id, &dto.RenameConversationRequest{Title: "Q3 plans"})
	require.NoError(t, err)
	assert.Equal(t, "Q3 plans", renamed.Title)
	require.Len(t, renamed.References, 1)
	assert.Equal(t, note.Id, renamed.References[0].EntityId)
	assert.Equal(t, "Roadmap", renamed.References[0].Title)

	got, err := h.chat.GetConversation(ctx, userId, conversation.Id)
	require.NoError(t, err)
	assert.Equal(t, "Q3 plans", got.Title)
}

func TestDeleteConversation(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()
	note := h.store.PutNote(entity.Note{UserId: userId, Title: "N", Content: "c"})

	res, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{
		Content:    "hello",
		References: []dto.ContextReferenceDTO{{EntityType: "note", EntityId: note.Id}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, h.chat.DeleteConversation(ctx, uuid.New(), res.ConversationId), apperror.ErrNotFound)
	require.NoError(t, h.chat.DeleteConversation(ctx, userId, res.ConversationId))

	_, err = h.chat.GetConversation(ctx, userId, res.ConversationId)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, h.messages(t, res.ConversationId))
	assert.ErrorIs(t, h.chat.DeleteConversation(ctx, userId, res.ConversationId), apperror.ErrNotFound)
	assert.Contains(t, h.publisher.types(), events.ConversationDeleted)
}

func TestGetConversationMarksDeletedEntities(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	ctx := context.Background()
	note := h.store.PutNote(entity.Note{UserId: userId, Title: "Gone soon", Content: "c"})

	res, err := h.chat.SendMessage(ctx, userId, &dto.SendMessageRequest{
		Content:    "hello",
		References: []dto.ContextReferenceDTO{{EntityType: "note", EntityId: note.Id}},
	})
	require.NoError(t, err)

	h.store.DeleteNote(note.Id)

	got, err := h.chat.GetConversation(ctx, userId, res.ConversationId)
	require.NoError(t, err)
	require.Len(t, got.References, 1)
	assert.False(t, *got.References[0].Available)
}

func TestConversationTitle(t *testing.T) {
	tests := []struct {
		hint, content, want string
	}{
		{hint: "Hint", content: "ignored", want: "Hint"},
		{content: "  spaced\n\tout  ", want: "spaced out"},
		{content: "", want: constant.DefaultConversationTitle},
		{content: strings.Repeat("é", 70), want: strings.Repeat("é", constant.TitlePrefixLength)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, conversationTitle(tt.hint, tt.content))
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}
