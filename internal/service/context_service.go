package service

import (
	"context"

	"cortex-ai-be/internal/dto"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/apperror"
	"cortex-ai-be/pkg/contextref"
	"cortex-ai-be/pkg/events"
	"cortex-ai-be/pkg/rag/resolver"

	"github.com/google/uuid"
)

type IContextService interface {
	AddReference(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.AddContextReferenceRequest) ([]dto.ContextReferenceDTO, error)
	RemoveReference(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RemoveContextReferenceRequest) ([]dto.ContextReferenceDTO, error)
	Search(ctx context.Context, userId uuid.UUID, request *dto.SearchContextRequest) (*dto.SearchContextResponse, error)
	// Attached is the cheap membership check backing disabled picker entries.
	Attached(conversationId uuid.UUID, ref contextref.Reference) bool
}

type contextService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *contextref.Registry
	resolver   *resolver.Resolver
	publisher  IPublisherService
	logger     logger.ILogger
	workspace  *workspaceLookup
}

func NewContextService(
	uowFactory unitofwork.RepositoryFactory,
	registry *contextref.Registry,
	resolver *resolver.Resolver,
	publisher IPublisherService,
	log logger.ILogger,
) IContextService {
	return &contextService{
		uowFactory: uowFactory,
		registry:   registry,
		resolver:   resolver,
		publisher:  publisher,
		logger:     log,
		workspace:  newWorkspaceLookup(uowFactory),
	}
}

// AddReference attaches an entity the user owns. Attaching twice is not an error.
func (s *contextService) AddReference(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.AddContextReferenceRequest) ([]dto.ContextReferenceDTO, error) {
	if err := s.verifyConversation(ctx, userId, conversationId); err != nil {
		return nil, err
	}

	ref, err := contextref.Parse(request.EntityType, request.EntityId.String())
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	exists, err := s.workspace.exists(ctx, userId, ref)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound(string(ref.Type()) + " not found")
	}

	if err := s.registry.Add(ctx, conversationId, ref); err != nil {
		return nil, err
	}
	s.publishChanged(ctx, userId, conversationId, ref, "added")

	return s.list(ctx, userId, conversationId)
}

// RemoveReference detaches a reference, or reports NotFound when it was never attached.
func (s *contextService) RemoveReference(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RemoveContextReferenceRequest) ([]dto.ContextReferenceDTO, error) {
	if err := s.verifyConversation(ctx, userId, conversationId); err != nil {
		return nil, err
	}

	ref, err := contextref.Parse(request.EntityType, request.EntityId)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	if err := s.registry.Remove(ctx, conversationId, ref); err != nil {
		return nil, err
	}
	s.publishChanged(ctx, userId, conversationId, ref, "removed")

	return s.list(ctx, userId, conversationId)
}

func (s *contextService) Search(ctx context.Context, userId uuid.UUID, request *dto.SearchContextRequest) (*dto.SearchContextResponse, error) {
	var (
		items []resolver.Suggestion
		err   error
	)

	if request.ConversationId == "" {
		items, err = s.resolver.Suggest(ctx, userId, request.Query)
	} else {
		conversationId, parseErr := uuid.Parse(request.ConversationId)
		if parseErr != nil {
			return nil, apperror.Validation("invalid conversation id")
		}
		if err := s.verifyConversation(ctx, userId, conversationId); err != nil {
			return nil, err
		}
		attached, listErr := s.registry.List(ctx, conversationId)
		if listErr != nil {
			return nil, listErr
		}
		items, err = s.resolver.SuggestFor(ctx, userId, attached, request.Query)
	}
	if err != nil {
		return nil, err
	}

	return &dto.SearchContextResponse{Items: items}, nil
}

func (s *contextService) Attached(conversationId uuid.UUID, ref contextref.Reference) bool {
	return s.registry.Contains(conversationId, ref)
}

func (s *contextService) list(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]dto.ContextReferenceDTO, error) {
	set, err := s.registry.List(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	return s.workspace.describe(ctx, userId, set.Items())
}

func (s *contextService) verifyConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOwned(ctx, conversationId, userId)
	if err != nil {
		return err
	}
	if conversation == nil {
		return apperror.NotFound("conversation not found")
	}
	return nil
}

func (s *contextService) publishChanged(ctx context.Context, userId, conversationId uuid.UUID, ref contextref.Reference, op string) {
	if s.publisher == nil {
		return
	}
	evt := events.NewConversationEvent(events.ConversationContextChanged, userId, conversationId, map[string]interface{}{
		"op":          op,
		"entity_type": string(ref.Type()),
		"entity_id":   ref.ID().String(),
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ContextService", "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}
}

// workspaceLookup resolves references to the entities they point at.
type workspaceLookup struct {
	uowFactory unitofwork.RepositoryFactory
}

func newWorkspaceLookup(uowFactory unitofwork.RepositoryFactory) *workspaceLookup {
	return &workspaceLookup{uowFactory: uowFactory}
}

// title returns the display title of ref's entity, and false if it is gone.
func (w *workspaceLookup) title(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, ref contextref.Reference) (string, bool, error) {
	switch r := ref.(type) {
	case contextref.NoteRef:
		note, err := uow.NoteRepository().FindOwned(ctx, r.Id, userId)
		if err != nil || note == nil {
			return "", false, err
		}
		return note.Title, true, nil
	case contextref.FolderRef:
		folder, err := uow.FolderRepository().FindOwned(ctx, r.Id, userId)
		if err != nil || folder == nil {
			return "", false, err
		}
		return folder.Name, true, nil
	case contextref.FileRef:
		file, err := uow.FileRepository().FindOwned(ctx, r.Id, userId)
		if err != nil || file == nil {
			return "", false, err
		}
		return file.Name, true, nil
	}
	return "", false, nil
}

func (w *workspaceLookup) exists(ctx context.Context, userId uuid.UUID, ref contextref.Reference) (bool, error) {
	_, ok, err := w.title(ctx, w.uowFactory.NewUnitOfWork(ctx), userId, ref)
	return ok, err
}

// describe renders refs for responses, marking the ones whose entity was deleted.
func (w *workspaceLookup) describe(ctx context.Context, userId uuid.UUID, refs []contextref.Reference) ([]dto.ContextReferenceDTO, error) {
	uow := w.uowFactory.NewUnitOfWork(ctx)
	out := make([]dto.ContextReferenceDTO, 0, len(refs))
	for _, ref := range refs {
		title, ok, err := w.title(ctx, uow, userId, ref)
		if err != nil {
			return nil, err
		}
		available := ok
		out = append(out, dto.ContextReferenceDTO{
			EntityType: string(ref.Type()),
			EntityId:   ref.ID(),
			Title:      title,
			Available:  &available,
		})
	}
	return out, nil
}
