package usecase

import (
	"context"

	"gocloud.dev/pubsub"

	"github.com/allisson/authgate/internal/outbox/domain"

	apperrors "github.com/allisson/authgate/internal/errors"

	// Register pubsub provider drivers for the event topic
	_ "gocloud.dev/pubsub/awssnssqs"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

// PubSubPublisher delivers outbox events through a gocloud.dev pubsub topic.
// The topic URL selects the provider (mem://, gcppubsub://, awssns:///...).
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher opens the topic at topicURL.
func NewPubSubPublisher(ctx context.Context, topicURL string) (*PubSubPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open event topic")
	}

	return &PubSubPublisher{
		topic: topic,
	}, nil
}

// Publish sends the event payload with its type and id as message metadata.
func (p *PubSubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg := &pubsub.Message{
		Body: []byte(event.Payload),
		Metadata: map[string]string{
			"event_type": event.EventType,
			"event_id":   event.ID.String(),
		},
	}

	if err := p.topic.Send(ctx, msg); err != nil {
		return apperrors.Wrap(err, "failed to publish event")
	}
	return nil
}

// Shutdown flushes and closes the topic.
func (p *PubSubPublisher) Shutdown(ctx context.Context) error {
	if p.topic == nil {
		return nil
	}
	return p.topic.Shutdown(ctx)
}
