package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/mapper"
	"cortex-ai-be/internal/model"
	"cortex-ai-be/internal/repository/contract"
	"cortex-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) Update(ctx context.Context, conversation *entity.Conversation) error {
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", conversation.Id).
		Update("title", conversation.Title).Error
}

func (r *ConversationRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

func (r *ConversationRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Conversation{}, id).Error
}

func (r *ConversationRepositoryImpl) FindOwned(ctx context.Context, id uuid.UUID, userId uuid.UUID) (*entity.Conversation, error) {
	var m model.Conversation
	query := applySpecifications(r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindPreviews(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*entity.ConversationPreview, error) {
	var rows []*model.ConversationPreviewRow

	// Drafts are excluded by the inner join, so every page is full and pages never overlap.
	query := applySpecifications(
		r.db.WithContext(ctx).
			Model(&model.Conversation{}).
			Select("conversations.id, conversations.user_id, conversations.title, " +
				"conversations.created_at, conversations.updated_at, COUNT(messages.id) AS message_count").
			Joins("JOIN messages ON messages.conversation_id = conversations.id").
			Where("conversations.user_id = ?", userId).
			Group("conversations.id"),
		specification.OrderByMany(
			specification.OrderBy{Field: "conversations.updated_at", Desc: true},
			specification.OrderBy{Field: "conversations.id", Desc: true},
		),
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list conversation previews: %w", err)
	}

	previews := make([]*entity.ConversationPreview, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	byId := make(map[uuid.UUID]*entity.ConversationPreview, len(rows))
	for _, row := range rows {
		p := r.mapper.PreviewRowToEntity(row)
		p.References = []*entity.ContextReference{}
		previews = append(previews, p)
		ids = append(ids, p.Id)
		byId[p.Id] = p
	}
	if len(ids) == 0 {
		return previews, nil
	}

	refs, err := NewContextReferenceRepository(r.db).FindByConversations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if p, ok := byId[ref.ConversationId]; ok {
			p.References = append(p.References, ref)
		}
	}
	return previews, nil
}
