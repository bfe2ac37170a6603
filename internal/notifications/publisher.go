package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsublib "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
)

// Publisher fans domain events out to the notification topic. Publishing is
// fire-and-forget: failures are logged and never surfaced to the caller, so a
// Pub/Sub outage cannot fail the originating request.
type Publisher struct {
	topic  *pubsublib.Publisher
	logger *logger.Logger
}

// NewPublisher wraps the notification topic publisher.
func NewPublisher(topic *pubsublib.Publisher, logg *logger.Logger) (*Publisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("notification topic publisher is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Publisher{topic: topic, logger: logg}, nil
}

// Publish sends one event to the topic. Call after the originating DB commit.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.topic == nil {
		return
	}
	if event.RecipientUserID == uuid.Nil || !event.Type.IsValid() {
		p.logger.Warn(p.logger.WithField(ctx, "type", string(event.Type)), "dropping malformed notification event")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "marshal notification event", err)
		return
	}

	result := p.topic.Publish(ctx, &pubsublib.Message{
		Data: payload,
		Attributes: map[string]string{
			"type": string(event.Type),
		},
	})
	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil {
			fields := map[string]any{
				"type":      string(event.Type),
				"recipient": event.RecipientUserID.String(),
			}
			p.logger.Error(p.logger.WithFields(context.WithoutCancel(ctx), fields), "publish notification event", err)
		}
	}()
}
