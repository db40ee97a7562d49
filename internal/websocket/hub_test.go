package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cortex-ai-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func registered(hub *Hub, userID uuid.UUID, n int) func() bool {
	return func() bool { return hub.Connected(userID) == n }
}

func TestHubSendEventReachesEveryDevice(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	phone := NewClient(hub, nil, userID, nil)
	laptop := NewClient(hub, nil, userID, nil)
	stranger := NewClient(hub, nil, uuid.New(), nil)

	hub.register <- phone
	hub.register <- laptop
	hub.register <- stranger
	require.Eventually(t, registered(hub, userID, 2), time.Second, 5*time.Millisecond)

	hub.SendEvent(userID, "conversation.renamed", map[string]string{"title": "Plans"})

	for _, c := range []*Client{phone, laptop} {
		select {
		case frame := <-c.Send:
			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(frame, &decoded))
			assert.Equal(t, "event", decoded["type"])
			assert.Equal(t, "conversation.renamed", decoded["event"])
		case <-time.After(time.Second):
			t.Fatal("frame not delivered")
		}
	}
	assert.Len(t, stranger.Send, 0)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	client := NewClient(hub, nil, userID, nil)

	hub.register <- client
	require.Eventually(t, registered(hub, userID, 1), time.Second, 5*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, registered(hub, userID, 0), time.Second, 5*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)

	// Frames for a closed client are dropped without panicking.
	assert.True(t, client.enqueue([]byte("late")))
}
