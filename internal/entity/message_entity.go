package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	References     []ReferenceSnapshot
	CreatedAt      time.Time
}

// ReferenceSnapshot records a reference as it was attached when the message was sent.
type ReferenceSnapshot struct {
	EntityType string    `json:"entity_type"`
	EntityId   uuid.UUID `json:"entity_id"`
}
