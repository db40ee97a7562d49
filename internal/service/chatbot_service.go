package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/dto"
	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/apperror"
	"cortex-ai-be/pkg/contextref"
	"cortex-ai-be/pkg/events"
	"cortex-ai-be/pkg/llm"
	"cortex-ai-be/pkg/lock"
	"cortex-ai-be/pkg/rag/access"
	"cortex-ai-be/pkg/rag/history"
	"cortex-ai-be/pkg/rag/message"
	"cortex-ai-be/pkg/rag/prompt"
	"cortex-ai-be/pkg/rag/summarizer"

	"github.com/google/uuid"
)

type IChatbotService interface {
	ListConversations(ctx context.Context, userId uuid.UUID, request *dto.ListConversationsRequest) ([]*dto.ConversationPreviewResponse, error)
	CreateConversation(ctx context.Context, userId uuid.UUID, request *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	GetConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetConversationResponse, error)
	RenameConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RenameConversationRequest) (*dto.ConversationResponse, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
}

type chatbotService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *contextref.Registry
	locker     lock.Locker
	publisher  IPublisherService
	logger     logger.ILogger

	summarizer     *summarizer.Summarizer
	gateway        *llm.Gateway
	limiter        *access.Limiter
	historyLoader  *history.Loader
	messageFactory *message.Factory
	workspace      *workspaceLookup
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	registry *contextref.Registry,
	summarizer *summarizer.Summarizer,
	gateway *llm.Gateway,
	limiter *access.Limiter,
	locker lock.Locker,
	publisher IPublisherService,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		uowFactory: uowFactory,
		registry:   registry,
		locker:     locker,
		publisher:  publisher,
		logger:     log,

		summarizer:     summarizer,
		gateway:        gateway,
		limiter:        limiter,
		historyLoader:  history.NewLoader(uowFactory),
		messageFactory: message.NewFactory(),
		workspace:      newWorkspaceLookup(uowFactory),
	}
}

func messagesLockKey(conversationId uuid.UUID) string {
	return "conversation:" + conversationId.String() + ":messages"
}

func (cs *chatbotService) ListConversations(ctx context.Context, userId uuid.UUID, request *dto.ListConversationsRequest) ([]*dto.ConversationPreviewResponse, error) {
	offset, limit := 0, constant.ListConversationsDefaultLimit
	if request != nil {
		offset = max(request.Offset, 0)
		if request.Limit > 0 {
			limit = min(request.Limit, constant.ListConversationsMaxLimit)
		}
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	previews, err := uow.ConversationRepository().FindPreviews(ctx, userId, offset, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationPreviewResponse, 0, len(previews))
	for _, p := range previews {
		refs := make([]dto.ContextReferenceDTO, 0, len(p.References))
		for _, r := range p.References {
			refs = append(refs, dto.ContextReferenceDTO{EntityType: r.EntityType, EntityId: r.EntityId})
		}
		res = append(res, &dto.ConversationPreviewResponse{
			Id:             p.Id,
			Title:          p.Title,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
			References:     refs,
			ReferenceCount: len(refs),
			MessageCount:   p.MessageCount,
		})
	}
	return res, nil
}

func (cs *chatbotService) CreateConversation(ctx context.Context, userId uuid.UUID, request *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	hint := ""
	if request != nil {
		hint = request.Title
	}

	conversation, err := cs.createConversation(ctx, userId, conversationTitle(hint, ""))
	if err != nil {
		return nil, err
	}
	return &dto.ConversationResponse{
		Id:         conversation.Id,
		Title:      conversation.Title,
		CreatedAt:  conversation.CreatedAt,
		UpdatedAt:  conversation.UpdatedAt,
		References: []dto.ContextReferenceDTO{},
	}, nil
}

func (cs *chatbotService) createConversation(ctx context.Context, userId uuid.UUID, title string) (*entity.Conversation, error) {
	now := time.Now().UTC()
	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: &now,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}

	cs.publish(ctx, events.NewConversationEvent(events.ConversationCreated, userId, conversation.Id, map[string]interface{}{
		"title": conversation.Title,
	}))
	return conversation, nil
}

func (cs *chatbotService) GetConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetConversationResponse, error) {
	conversation, err := cs.findOwned(ctx, userId, conversationId)
	if err != nil {
		return nil, err
	}

	attached, err := cs.registry.List(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	refs, err := cs.workspace.describe(ctx, userId, attached.Items())
	if err != nil {
		return nil, err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindByConversation(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	res := &dto.GetConversationResponse{
		ConversationResponse: dto.ConversationResponse{
			Id:         conversation.Id,
			Title:      conversation.Title,
			CreatedAt:  conversation.CreatedAt,
			UpdatedAt:  conversation.UpdatedAt,
			References: refs,
		},
		Messages: make([]*dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageResponse(m))
	}
	return res, nil
}

func (cs *chatbotService) RenameConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RenameConversationRequest) (*dto.ConversationResponse, error) {
	title := ""
	if request != nil {
		title = strings.TrimSpace(request.Title)
	}
	if title == "" {
		return nil, apperror.Validation("title cannot be empty")
	}

	conversation, err := cs.findOwned(ctx, userId, conversationId)
	if err != nil {
		return nil, err
	}

	conversation.Title = title
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}

	cs.publish(ctx, events.NewConversationEvent(events.ConversationRenamed, userId, conversationId, map[string]interface{}{
		"title": title,
	}))

	attached, err := cs.registry.List(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	refs, err := cs.workspace.describe(ctx, userId, attached.Items())
	if err != nil {
		return nil, err
	}

	return &dto.ConversationResponse{
		Id:         conversation.Id,
		Title:      conversation.Title,
		CreatedAt:  conversation.CreatedAt,
		UpdatedAt:  conversation.UpdatedAt,
		References: refs,
	}, nil
}

func (cs *chatbotService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	if _, err := cs.findOwned(ctx, userId, conversationId); err != nil {
		return err
	}

	unlock, err := cs.locker.Lock(ctx, messagesLockKey(conversationId))
	if err != nil {
		return err
	}
	defer unlock()

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversation(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ContextReferenceRepository().DeleteByConversation(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	cs.registry.Forget(conversationId)
	cs.publish(ctx, events.NewConversationEvent(events.ConversationDeleted, userId, conversationId, nil))
	return nil
}

// SendMessage records the user's message, generates a reply grounded in the
// conversation's context and records the reply. The user message is kept even
// when generation fails. Every sent reference must point at an entity the user owns.
func (cs *chatbotService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if request == nil {
		return nil, apperror.Validation("message content cannot be empty")
	}
	content := strings.TrimSpace(request.Content)
	if content == "" {
		return nil, apperror.Validation("message content cannot be empty")
	}
	refs, err := toReferences(request.References)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		exists, err := cs.workspace.exists(ctx, userId, ref)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperror.NotFound(string(ref.Type()) + " not found")
		}
	}

	if err := cs.limiter.Verify(userId); err != nil {
		return nil, err
	}

	var conversation *entity.Conversation
	if request.ConversationId == nil || *request.ConversationId == uuid.Nil || request.Reset {
		conversation, err = cs.createConversation(ctx, userId, conversationTitle(request.Title, content))
	} else {
		conversation, err = cs.findOwned(ctx, userId, *request.ConversationId)
	}
	if err != nil {
		return nil, err
	}

	unlock, err := cs.locker.Lock(ctx, messagesLockKey(conversation.Id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if len(refs) > 0 {
		for _, ref := range refs {
			if err := cs.registry.Add(ctx, conversation.Id, ref); err != nil {
				return nil, err
			}
		}
		cs.publish(ctx, events.NewConversationEvent(events.ConversationContextChanged, userId, conversation.Id, nil))
	}

	attached, err := cs.registry.List(ctx, conversation.Id)
	if err != nil {
		return nil, err
	}
	summaries, err := cs.summarizer.Summarize(ctx, userId, attached.Items())
	if err != nil {
		return nil, err
	}

	// History is read before the new message lands so the prompt does not repeat it.
	priorMessages, err := cs.historyLoader.LoadConversationHistory(ctx, conversation.Id)
	if err != nil {
		return nil, err
	}

	if len(priorMessages) == 0 && conversation.Title == constant.DefaultConversationTitle {
		if err := cs.retitle(ctx, conversation, conversationTitle(request.Title, content)); err != nil {
			return nil, err
		}
	}

	userMessage := cs.messageFactory.CreateUserMessage(conversation.Id, content, refs)
	if err := cs.messageFactory.Append(ctx, cs.uowFactory, &userMessage); err != nil {
		return nil, err
	}
	cs.publishAppended(ctx, userId, &userMessage)

	reply, err := cs.gateway.Generate(ctx, prompt.Assemble(summaries, priorMessages, content))
	if err != nil {
		cs.logger.Error("ChatbotService", "Generation failed", map[string]interface{}{
			"user_id":         userId,
			"conversation_id": conversation.Id,
			"message_id":      userMessage.Id,
			"error":           err.Error(),
		})
		var appErr *apperror.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperror.KindUpstreamGeneration {
			appErr = apperror.UpstreamGeneration(err)
		}
		return nil, appErr.
			WithDetail("conversation_id", conversation.Id.String()).
			WithDetail("user_message_id", userMessage.Id.String())
	}

	assistantMessage := cs.messageFactory.CreateAssistantMessage(conversation.Id, reply, attached.Items())
	if err := cs.messageFactory.Append(ctx, cs.uowFactory, &assistantMessage); err != nil {
		return nil, err
	}
	cs.publishAppended(ctx, userId, &assistantMessage)

	return &dto.SendMessageResponse{
		ConversationId:    conversation.Id,
		ConversationTitle: conversation.Title,
		Sent:              toMessageResponse(&userMessage),
		Reply:             toMessageResponse(&assistantMessage),
		Context:           summaries,
	}, nil
}

func (cs *chatbotService) retitle(ctx context.Context, conversation *entity.Conversation, title string) error {
	if title == conversation.Title {
		return nil
	}
	conversation.Title = title
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return err
	}
	cs.publish(ctx, events.NewConversationEvent(events.ConversationRenamed, conversation.UserId, conversation.Id, map[string]interface{}{
		"title": title,
	}))
	return nil
}

func (cs *chatbotService) findOwned(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*entity.Conversation, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOwned(ctx, conversationId, userId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("conversation not found")
	}
	return conversation, nil
}

func (cs *chatbotService) publishAppended(ctx context.Context, userId uuid.UUID, m *entity.Message) {
	cs.publish(ctx, events.NewConversationEvent(events.ConversationMessageAppended, userId, m.ConversationId, map[string]interface{}{
		"message_id": m.Id.String(),
		"role":       m.Role,
	}))
}

// publish is best effort: a lost notification never fails the request.
func (cs *chatbotService) publish(ctx context.Context, event events.Event) {
	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("ChatbotService", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

// conversationTitle prefers the hint, then the first runes of content.
func conversationTitle(hint, content string) string {
	if t := strings.TrimSpace(hint); t != "" {
		return t
	}
	content = strings.Join(strings.Fields(content), " ")
	if content == "" {
		return constant.DefaultConversationTitle
	}
	runes := []rune(content)
	if len(runes) > constant.TitlePrefixLength {
		return strings.TrimSpace(string(runes[:constant.TitlePrefixLength]))
	}
	return content
}

func toReferences(in []dto.ContextReferenceDTO) ([]contextref.Reference, error) {
	refs := make([]contextref.Reference, 0, len(in))
	seen := make(map[contextref.Key]struct{}, len(in))
	for _, r := range in {
		entityType, err := contextref.ParseEntityType(r.EntityType)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		ref, err := contextref.New(entityType, r.EntityId)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		if _, dup := seen[contextref.KeyOf(ref)]; dup {
			continue
		}
		seen[contextref.KeyOf(ref)] = struct{}{}
		refs = append(refs, ref)
	}
	return refs, nil
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	refs := make([]dto.ContextReferenceDTO, 0, len(m.References))
	for _, r := range m.References {
		refs = append(refs, dto.ContextReferenceDTO{EntityType: r.EntityType, EntityId: r.EntityId})
	}
	return &dto.MessageResponse{
		Id:         m.Id,
		Role:       m.Role,
		Content:    m.Content,
		References: refs,
		CreatedAt:  m.CreatedAt,
	}
}
