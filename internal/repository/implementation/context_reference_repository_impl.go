package implementation

import (
	"context"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/mapper"
	"cortex-ai-be/internal/model"
	"cortex-ai-be/internal/repository/contract"
	"cortex-ai-be/internal/repository/scope"
	"cortex-ai-be/internal/repository/specification"
	"cortex-ai-be/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContextReferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewContextReferenceRepository(db *gorm.DB) contract.ContextReferenceRepository {
	return &ContextReferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ContextReferenceRepositoryImpl) Create(ctx context.Context, ref *entity.ContextReference) error {
	m := r.mapper.ContextReferenceToModel(ref)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateReference(err)
		}
		return err
	}
	*ref = *r.mapper.ContextReferenceToEntity(m)
	return nil
}

func (r *ContextReferenceRepositoryImpl) Delete(ctx context.Context, conversationId uuid.UUID, entityType string, entityId uuid.UUID) error {
	result := applySpecifications(r.db.WithContext(ctx),
		specification.ByConversationID{ConversationID: conversationId},
		specification.ByEntityKey{EntityType: entityType, EntityID: entityId},
	).Delete(&model.ContextReference{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("context reference not found")
	}
	return nil
}

func (r *ContextReferenceRepositoryImpl) DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error {
	return applySpecifications(r.db.WithContext(ctx), specification.ByConversationID{ConversationID: conversationId}).
		Delete(&model.ContextReference{}).Error
}

func (r *ContextReferenceRepositoryImpl) FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.ContextReference, error) {
	return r.find(ctx, specification.ByConversationID{ConversationID: conversationId})
}

func (r *ContextReferenceRepositoryImpl) FindByConversations(ctx context.Context, conversationIds []uuid.UUID) ([]*entity.ContextReference, error) {
	if len(conversationIds) == 0 {
		return []*entity.ContextReference{}, nil
	}
	return r.find(ctx, specification.ByConversationIDs{ConversationIDs: conversationIds})
}

func (r *ContextReferenceRepositoryImpl) find(ctx context.Context, spec specification.Specification) ([]*entity.ContextReference, error) {
	var models []*model.ContextReference
	query := applySpecifications(r.db.WithContext(ctx), spec).Scopes(scope.OrderByCreatedAsc, scope.OrderByIDAsc)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.ContextReference, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ContextReferenceToEntity(m))
	}
	return out, nil
}
