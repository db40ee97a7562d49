package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// ConversationPreview is a listing row: metadata plus aggregate counts.
type ConversationPreview struct {
	Conversation
	References   []*ContextReference
	MessageCount int64
}

type ContextReference struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	EntityType     string
	EntityId       uuid.UUID
	CreatedAt      time.Time
}
