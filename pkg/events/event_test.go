package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationEventSurvivesJSON(t *testing.T) {
	userId := uuid.New()
	conversationId := uuid.New()
	evt := NewConversationEvent(ConversationRenamed, userId, conversationId, map[string]interface{}{"title": "Plans"})

	raw, err := json.Marshal(Envelope(evt))
	require.NoError(t, err)

	var decoded BaseEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, ConversationRenamed, decoded.EventType())
	assert.Equal(t, "Plans", decoded.Payload()["title"])
	assert.Equal(t, conversationId.String(), decoded.Payload()["conversation_id"])
	assert.True(t, evt.Timestamp().Equal(decoded.Timestamp()))

	got, ok := UserID(decoded)
	assert.True(t, ok)
	assert.Equal(t, userId, got)
}

func TestUserIDMissing(t *testing.T) {
	_, ok := UserID(BaseEvent{Data: map[string]interface{}{"user_id": "nope"}})
	assert.False(t, ok)

	_, ok = UserID(BaseEvent{Data: map[string]interface{}{}})
	assert.False(t, ok)
}
