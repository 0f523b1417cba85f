package service

import (
	"context"
	"encoding/json"
	"fmt"

	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/events"
	"voice-agent-be/pkg/observability"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships events out of the process (NATS in production).
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewConsumerService turns interaction events into metrics and forwards them
// when forwarder is not nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
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
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	record(event)

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(msg.Context(), event); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to forward event", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}

func record(event events.BaseEvent) {
	switch event.Type {
	case events.TypeStateChanged:
		observability.StateTransitionsTotal.WithLabelValues(str(event.Data[events.KeyFrom]), str(event.Data[events.KeyTo])).Inc()
	case events.TypeUtteranceAppended:
		observability.UtterancesTotal.WithLabelValues(str(event.Data[events.KeyRole])).Inc()
	case events.TypeCaptureFailed:
		observability.FailuresTotal.WithLabelValues("capture").Inc()
	case events.TypeTransportFailed:
		observability.FailuresTotal.WithLabelValues("transport").Inc()
	case events.TypePlaybackFailed:
		observability.FailuresTotal.WithLabelValues("playback").Inc()
	}
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
