package implementation

import (
	"context"
	"errors"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/mapper"
	"cortex-ai-be/internal/model"
	"cortex-ai-be/internal/repository/contract"
	"cortex-ai-be/internal/repository/scope"
	"cortex-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m, err := r.mapper.MessageToModel(message)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	stored, err := r.mapper.MessageToEntity(m)
	if err != nil {
		return err
	}
	*message = *stored
	return nil
}

func (r *MessageRepositoryImpl) FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	var models []*model.Message
	query := applySpecifications(r.db.WithContext(ctx), specification.ByConversationID{ConversationID: conversationId}).
		Scopes(scope.OrderByCreatedAsc, scope.OrderByIDAsc)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models)
}

func (r *MessageRepositoryImpl) LastCreatedAt(ctx context.Context, conversationId uuid.UUID) (*time.Time, error) {
	var m model.Message
	query := applySpecifications(r.db.WithContext(ctx), specification.ByConversationID{ConversationID: conversationId}).
		Scopes(scope.OrderByCreatedDesc)
	if err := query.Select("created_at").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m.CreatedAt, nil
}

func (r *MessageRepositoryImpl) DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Delete(&model.Message{}).Error
}
