package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title     string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Messages   []Message          `gorm:"foreignKey:ConversationId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	References []ContextReference `gorm:"foreignKey:ConversationId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationPreviewRow is the scan target of the listing query.
type ConversationPreviewRow struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int64
}

type ContextReference struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_context_reference_key,priority:1"`
	EntityType     string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_context_reference_key,priority:2"`
	EntityId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_context_reference_key,priority:3"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ContextReference) TableName() string {
	return "context_references"
}
