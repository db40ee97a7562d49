package service

import (
	"context"
	"encoding/json"

	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// EventDelivery pushes an event to a user's live sessions. Implemented by the websocket Hub.
type EventDelivery interface {
	SendEvent(userID uuid.UUID, eventType string, data interface{})
}

// EventForwarder ships an event to the durable bus. Implemented by the NATS publisher.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process conversation topic. Events go to NATS
// when it is connected and straight to the websocket hub otherwise.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	delivery EventDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		delivery:   delivery,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Warn("ConsumerService", "Dropping undecodable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	if cs.forwarder != nil {
		err := cs.forwarder.Publish(ctx, event)
		if err == nil {
			msg.Ack()
			return
		}
		cs.logger.Warn("ConsumerService", "Forward to NATS failed, delivering locally", map[string]interface{}{
			"event_type": event.Type,
			"error":      err.Error(),
		})
	}

	deliverEvent(cs.delivery, event)
	msg.Ack()
}

// deliverEvent sends event to its owner's sockets; events without an owner are ignored.
func deliverEvent(delivery EventDelivery, event events.Event) bool {
	if delivery == nil {
		return false
	}
	userId, ok := events.UserID(event)
	if !ok {
		return false
	}
	delivery.SendEvent(userId, event.EventType(), event.Payload())
	return true
}
