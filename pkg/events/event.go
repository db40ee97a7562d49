package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "conversation.created").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope is the serialized form of an Event on every bus.
func Envelope(e Event) BaseEvent {
	return BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}

// UserID extracts the owning user of an event, if it carries one.
func UserID(e Event) (uuid.UUID, bool) {
	raw, ok := e.Payload()["user_id"]
	if !ok {
		return uuid.Nil, false
	}
	switch v := raw.(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil && id != uuid.Nil
	}
	return uuid.Nil, false
}
