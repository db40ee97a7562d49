package service

import (
	"context"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/pkg/events"
	pktNats "cortex-ai-be/pkg/nats"
)

// RelayService delivers conversation events coming back from NATS to the
// websocket hub. The stream is a work queue, so each event is relayed by one
// instance and the hub's Redis fan-out reaches the others.
type RelayService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewRelayService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *RelayService {
	return &RelayService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *RelayService) Start(ctx context.Context) error {
	subject := pktNats.Subject("conversation.>")
	if err := s.subscriber.Subscribe(ctx, subject, constant.ConversationRelayDurable, s.handleEvent); err != nil {
		s.logger.Error("RelayService", "Failed to start relay", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("RelayService", "Relaying conversation events", map[string]interface{}{"subject": subject})
	return nil
}

func (s *RelayService) handleEvent(ctx context.Context, event events.Event) error {
	if !deliverEvent(s.delivery, event) {
		s.logger.Debug("RelayService", "Event has no owner, skipped", map[string]interface{}{"type": event.EventType()})
	}
	return nil
}
