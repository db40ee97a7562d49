package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConversationCreated         = "conversation.created"
	ConversationRenamed         = "conversation.renamed"
	ConversationDeleted         = "conversation.deleted"
	ConversationMessageAppended = "conversation.message_appended"
	ConversationContextChanged  = "conversation.context_changed"
)

// NewConversationEvent builds an event scoped to one user's conversation.
// Ids are stored as strings so the payload survives a JSON round trip unchanged.
func NewConversationEvent(eventType string, userId, conversationId uuid.UUID, data map[string]interface{}) BaseEvent {
	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["user_id"] = userId.String()
	payload["conversation_id"] = conversationId.String()

	return BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now().UTC(),
	}
}
