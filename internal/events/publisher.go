package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillEventPublisher sends events as JSON messages to one topic.
type WatermillEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewKafkaEventPublisher publishes to a Kafka cluster.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*WatermillEventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &WatermillEventPublisher{publisher: publisher, topic: topic, logger: logger}, nil
}

// NewGoChannelEventPublisher keeps events in process. The returned
// GoChannel can be subscribed to.
func NewGoChannelEventPublisher(topic string, logger *slog.Logger) (*WatermillEventPublisher, *gochannel.GoChannel) {
	channel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &WatermillEventPublisher{publisher: channel, topic: topic, logger: logger}, channel
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	p.logger.DebugContext(ctx, "Event published", "event_type", event.Type, "event_id", event.ID)
	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

// PublishSafe publishes and logs failures instead of returning them.
func PublishSafe(ctx context.Context, publisher EventPublisher, logger *slog.Logger, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, NewEvent(eventType, data)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "event_type", eventType, "error", err)
	}
}

// LogEvents drains topic until ctx ends, logging each event. It is the
// consumer of the in-process bus when no broker is configured.
func LogEvents(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Warn("Dropping malformed event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			logger.Info("Event", "event_type", event.Type, "event_id", event.ID, "data", event.Data)
			msg.Ack()
		}
	}()
	return nil
}
