package dto

import (
	"time"

	"cortex-ai-be/pkg/rag/summarizer"

	"github.com/google/uuid"
)

type ListConversationsRequest struct {
	Offset int `query:"offset" validate:"omitempty,min=0"`
	Limit  int `query:"limit" validate:"omitempty,min=0"`
}

type CreateConversationRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

type RenameConversationRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type ConversationResponse struct {
	Id         uuid.UUID             `json:"id"`
	Title      string                `json:"title"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  *time.Time            `json:"updated_at"`
	References []ContextReferenceDTO `json:"references"`
}

type ConversationPreviewResponse struct {
	Id             uuid.UUID             `json:"id"`
	Title          string                `json:"title"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      *time.Time            `json:"updated_at"`
	References     []ContextReferenceDTO `json:"references"`
	ReferenceCount int                   `json:"reference_count"`
	MessageCount   int64                 `json:"message_count"`
}

type GetConversationResponse struct {
	ConversationResponse
	Messages []*MessageResponse `json:"messages"`
}

type MessageResponse struct {
	Id         uuid.UUID             `json:"id"`
	Role       string                `json:"role"`
	Content    string                `json:"content"`
	References []ContextReferenceDTO `json:"references"`
	CreatedAt  time.Time             `json:"created_at"`
}

type SendMessageRequest struct {
	ConversationId *uuid.UUID            `json:"conversation_id"`
	Content        string                `json:"content" validate:"required,max=20000"`
	References     []ContextReferenceDTO `json:"references" validate:"max=50,dive"`
	Title          string                `json:"title" validate:"omitempty,max=255"`
	Reset          bool                  `json:"reset"`
}

type SendMessageResponse struct {
	ConversationId    uuid.UUID                   `json:"conversation_id"`
	ConversationTitle string                      `json:"title"`
	Sent              *MessageResponse            `json:"sent"`
	Reply             *MessageResponse            `json:"reply"`
	Context           []summarizer.ContextSummary `json:"context"`
}
