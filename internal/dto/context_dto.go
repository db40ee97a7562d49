package dto

import (
	"cortex-ai-be/pkg/rag/resolver"

	"github.com/google/uuid"
)

// ContextReferenceDTO is the wire form of a reference. Available is only set
// on reads and reports whether the target entity still exists.
type ContextReferenceDTO struct {
	EntityType string    `json:"entity_type" validate:"required,oneof=note folder file"`
	EntityId   uuid.UUID `json:"entity_id" validate:"required"`
	Title      string    `json:"title,omitempty"`
	Available  *bool     `json:"available,omitempty"`
}

type AddContextReferenceRequest struct {
	EntityType string    `json:"entity_type" validate:"required,oneof=note folder file"`
	EntityId   uuid.UUID `json:"entity_id" validate:"required"`
}

type RemoveContextReferenceRequest struct {
	EntityType string `query:"entity_type" validate:"required,oneof=note folder file"`
	EntityId   string `query:"entity_id" validate:"required,uuid"`
}

type SearchContextRequest struct {
	Query          string `query:"q" validate:"max=200"`
	ConversationId string `query:"conversation_id" validate:"omitempty,uuid"`
}

type SearchContextResponse struct {
	Items []resolver.Suggestion `json:"items"`
}
