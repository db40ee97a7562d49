package service

import (
	"context"
	"fmt"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/contextref"

	"github.com/google/uuid"
)

// contextReferenceStore persists registry mutations through the unit of work.
type contextReferenceStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewContextReferenceStore(uowFactory unitofwork.RepositoryFactory) contextref.Store {
	return &contextReferenceStore{uowFactory: uowFactory}
}

func (s *contextReferenceStore) List(ctx context.Context, conversationId uuid.UUID) ([]contextref.Reference, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.ContextReferenceRepository().FindByConversation(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	return referencesOf(rows)
}

func (s *contextReferenceStore) Add(ctx context.Context, conversationId uuid.UUID, ref contextref.Reference) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ContextReferenceRepository().Create(ctx, &entity.ContextReference{
		Id:             uuid.New(),
		ConversationId: conversationId,
		EntityType:     string(ref.Type()),
		EntityId:       ref.ID(),
		CreatedAt:      time.Now(),
	})
}

func (s *contextReferenceStore) Remove(ctx context.Context, conversationId uuid.UUID, ref contextref.Reference) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ContextReferenceRepository().Delete(ctx, conversationId, string(ref.Type()), ref.ID())
}

func referencesOf(rows []*entity.ContextReference) ([]contextref.Reference, error) {
	refs := make([]contextref.Reference, 0, len(rows))
	for _, row := range rows {
		ref, err := contextref.Parse(row.EntityType, row.EntityId.String())
		if err != nil {
			return nil, fmt.Errorf("context reference %s: %w", row.Id, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
