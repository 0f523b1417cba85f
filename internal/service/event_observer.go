package service

import (
	"context"
	"errors"

	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/events"
	"voice-agent-be/pkg/interaction"

	"github.com/google/uuid"
)

// eventObserver publishes what happens in one conversation on the event bus.
type eventObserver struct {
	interaction.BaseObserver
	sessionID uuid.UUID
	publisher IPublisherService
	logger    logger.ILogger
}

func newEventObserver(sessionID uuid.UUID, publisher IPublisherService, log logger.ILogger) *eventObserver {
	return &eventObserver{sessionID: sessionID, publisher: publisher, logger: log}
}

func (o *eventObserver) StateChanged(from, to interaction.State) {
	o.publish(events.TypeStateChanged, map[string]interface{}{
		events.KeyFrom: from.String(),
		events.KeyTo:   to.String(),
	})
}

func (o *eventObserver) UtteranceAppended(u dialogue.Utterance) {
	o.publish(events.TypeUtteranceAppended, map[string]interface{}{
		events.KeyRole: string(u.Role),
		events.KeyText: u.Text,
	})
}

func (o *eventObserver) Failed(err error) {
	o.publish(failureType(err), map[string]interface{}{
		events.KeyError: err.Error(),
	})
}

func (o *eventObserver) publish(eventType string, data map[string]interface{}) {
	data[events.KeySessionID] = o.sessionID.String()
	if err := o.publisher.Publish(context.Background(), events.New(eventType, data)); err != nil {
		o.logger.Warn("EventObserver", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func failureType(err error) string {
	var (
		captureErr   *interaction.CaptureError
		transportErr *interaction.TransportError
	)
	switch {
	case errors.As(err, &captureErr):
		return events.TypeCaptureFailed
	case errors.As(err, &transportErr):
		return events.TypeTransportFailed
	default:
		return events.TypePlaybackFailed
	}
}
