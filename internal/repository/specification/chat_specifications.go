package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByConversationIDs struct {
	ConversationIDs []uuid.UUID
}

func (s ByConversationIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id IN ?", s.ConversationIDs)
}

// ByEntityKey matches one reference of a conversation by its (type, id) key.
type ByEntityKey struct {
	EntityType string
	EntityID   uuid.UUID
}

func (s ByEntityKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("entity_type = ? AND entity_id = ?", s.EntityType, s.EntityID)
}
