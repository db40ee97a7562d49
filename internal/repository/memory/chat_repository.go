package memory

import (
	"context"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/pkg/apperror"

	"github.com/google/uuid"
)

type conversationRepository struct {
	store *Store
}

func (r *conversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversation.Id == uuid.Nil {
		conversation.Id = uuid.New()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	if conversation.UpdatedAt == nil {
		t := conversation.CreatedAt
		conversation.UpdatedAt = &t
	}
	c := *conversation
	s.conversations[c.Id] = &c
	return nil
}

func (r *conversationRepository) Update(ctx context.Context, conversation *entity.Conversation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.conversations[conversation.Id]
	if !ok {
		return nil
	}
	existing.Title = conversation.Title
	return nil
}

func (r *conversationRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conversations[id]; ok {
		c.UpdatedAt = &at
	}
	return nil
}

func (r *conversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
	return nil
}

func (r *conversationRepository) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Conversation, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok || c.UserId != userId {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *conversationRepository) FindPreviews(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*entity.ConversationPreview, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	previews := make([]*entity.ConversationPreview, 0)
	for _, c := range s.conversations {
		if c.UserId != userId || len(s.messages[c.Id]) == 0 {
			continue
		}
		refs := make([]*entity.ContextReference, 0, len(s.references[c.Id]))
		for _, ref := range s.references[c.Id] {
			cp := *ref
			refs = append(refs, &cp)
		}
		previews = append(previews, &entity.ConversationPreview{
			Conversation: *c,
			References:   refs,
			MessageCount: int64(len(s.messages[c.Id])),
		})
	}

	sortSlice(previews, func(a, b *entity.ConversationPreview) bool {
		return newerFirst(timeOr(a.UpdatedAt, a.CreatedAt), timeOr(b.UpdatedAt, b.CreatedAt), a.Id, b.Id)
	})

	if offset >= len(previews) {
		return []*entity.ConversationPreview{}, nil
	}
	return limitSlice(previews[offset:], limit), nil
}

type messageRepository struct {
	store *Store
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	m := *message
	m.References = append([]entity.ReferenceSnapshot(nil), message.References...)
	s.messages[m.ConversationId] = append(s.messages[m.ConversationId], &m)
	return nil
}

func (r *messageRepository) FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Message, 0, len(s.messages[conversationId]))
	for _, m := range s.messages[conversationId] {
		cp := *m
		out = append(out, &cp)
	}
	sortSlice(out, func(a, b *entity.Message) bool {
		return olderFirst(a.CreatedAt, b.CreatedAt, a.Id, b.Id)
	})
	return out, nil
}

func (r *messageRepository) LastCreatedAt(ctx context.Context, conversationId uuid.UUID) (*time.Time, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *time.Time
	for _, m := range s.messages[conversationId] {
		if last == nil || m.CreatedAt.After(*last) {
			t := m.CreatedAt
			last = &t
		}
	}
	return last, nil
}

func (r *messageRepository) DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, conversationId)
	return nil
}

type contextReferenceRepository struct {
	store *Store
}

func (r *contextReferenceRepository) Create(ctx context.Context, ref *entity.ContextReference) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.referenceWriteErr != nil {
		return s.referenceWriteErr
	}
	for _, existing := range s.references[ref.ConversationId] {
		if existing.EntityType == ref.EntityType && existing.EntityId == ref.EntityId {
			return apperror.DuplicateReference(nil)
		}
	}
	if ref.Id == uuid.Nil {
		ref.Id = uuid.New()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	cp := *ref
	s.references[ref.ConversationId] = append(s.references[ref.ConversationId], &cp)
	return nil
}

func (r *contextReferenceRepository) Delete(ctx context.Context, conversationId uuid.UUID, entityType string, entityId uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.referenceWriteErr != nil {
		return s.referenceWriteErr
	}
	refs := s.references[conversationId]
	for i, existing := range refs {
		if existing.EntityType == entityType && existing.EntityId == entityId {
			s.references[conversationId] = append(refs[:i:i], refs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("context reference not found")
}

func (r *contextReferenceRepository) DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.references, conversationId)
	return nil
}

func (r *contextReferenceRepository) FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.ContextReference, error) {
	return r.FindByConversations(ctx, []uuid.UUID{conversationId})
}

func (r *contextReferenceRepository) FindByConversations(ctx context.Context, conversationIds []uuid.UUID) ([]*entity.ContextReference, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.ContextReference, 0)
	for _, id := range conversationIds {
		for _, ref := range s.references[id] {
			cp := *ref
			out = append(out, &cp)
		}
	}
	return out, nil
}
