package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Message rows are append-only; they go away with their conversation.
type Message struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	Role           string         `gorm:"type:varchar(16);not null"`
	Content        string         `gorm:"type:text;not null"`
	References     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_messages_conversation_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}
