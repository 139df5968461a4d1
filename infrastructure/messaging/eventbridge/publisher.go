// Package eventbridge publishes domain events to an AWS EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/events"
)

const eventSource = "stratgraph"

// Publisher implements ports.EventPublisher using AWS EventBridge. Consumers
// subscribe via EventBridge rules configured outside the application.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// Publish sends a single event to EventBridge
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends multiple events to EventBridge
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	// EventBridge limits PutEvents to 10 entries per call
	const batchSize = 10

	for i := 0; i < len(domainEvents); i += batchSize {
		end := i + batchSize
		if end > len(domainEvents) {
			end = len(domainEvents)
		}
		if err := p.putEvents(ctx, domainEvents[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) putEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(domainEvents))
	for _, event := range domainEvents {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal event",
				zap.Error(err),
				zap.String("eventType", event.GetEventType()))
			continue
		}

		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
			Resources: []string{
				fmt.Sprintf("arn:aws:stratgraph::%s", event.GetAggregateID()),
			},
		})
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("Failed to publish event",
					zap.String("eventType", domainEvents[i].GetEventType()),
					zap.String("errorCode", *entry.ErrorCode),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)))
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName))
	return nil
}
