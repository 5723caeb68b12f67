// Package logging provides an event publisher that writes events to the log.
// It stands in for EventBridge when no event bus is configured.
package logging

import (
	"context"

	"go.uber.org/zap"

	"hazboun-backend/domain/events"
)

// Publisher logs each event at info level.
type Publisher struct {
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateId", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

func (p *Publisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = p.Publish(ctx, e)
	}
	return nil
}
