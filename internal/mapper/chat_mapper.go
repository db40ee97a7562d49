package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Conversation Mappers

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	updatedAt := c.CreatedAt
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChatMapper) PreviewRowToEntity(r *model.ConversationPreviewRow) *entity.ConversationPreview {
	if r == nil {
		return nil
	}
	updatedAt := r.UpdatedAt
	return &entity.ConversationPreview{
		Conversation: entity.Conversation{
			Id:        r.Id,
			UserId:    r.UserId,
			Title:     r.Title,
			CreatedAt: r.CreatedAt,
			UpdatedAt: &updatedAt,
		},
		MessageCount: r.MessageCount,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) (*entity.Message, error) {
	if msg == nil {
		return nil, nil
	}

	var refs []entity.ReferenceSnapshot
	if len(msg.References) > 0 {
		if err := json.Unmarshal(msg.References, &refs); err != nil {
			return nil, fmt.Errorf("decode references of message %s: %w", msg.Id, err)
		}
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		References:     refs,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) (*model.Message, error) {
	if msg == nil {
		return nil, nil
	}

	refs := msg.References
	if refs == nil {
		refs = []entity.ReferenceSnapshot{}
	}
	raw, err := json.Marshal(refs)
	if err != nil {
		return nil, err
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		References:     datatypes.JSON(raw),
		CreatedAt:      msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.Message) ([]*entity.Message, error) {
	out := make([]*entity.Message, 0, len(msgs))
	for _, msg := range msgs {
		e, err := m.MessageToEntity(msg)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Context Reference Mappers

func (m *ChatMapper) ContextReferenceToEntity(r *model.ContextReference) *entity.ContextReference {
	if r == nil {
		return nil
	}
	return &entity.ContextReference{
		Id:             r.Id,
		ConversationId: r.ConversationId,
		EntityType:     r.EntityType,
		EntityId:       r.EntityId,
		CreatedAt:      r.CreatedAt,
	}
}

func (m *ChatMapper) ContextReferenceToModel(r *entity.ContextReference) *model.ContextReference {
	if r == nil {
		return nil
	}
	return &model.ContextReference{
		Id:             r.Id,
		ConversationId: r.ConversationId,
		EntityType:     r.EntityType,
		EntityId:       r.EntityId,
		CreatedAt:      r.CreatedAt,
	}
}
