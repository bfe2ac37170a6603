package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsublib "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
)

type inboxWriter interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
}

// Consumer turns published notification events into inbox rows.
type Consumer struct {
	repo inboxWriter
	logg *logger.Logger
}

// NewConsumer builds a notification consumer.
func NewConsumer(repo inboxWriter, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, logg: logg}, nil
}

// Process decodes one message and writes the inbox row. Malformed messages are
// dropped (returning an error would make Pub/Sub redeliver them forever).
func (c *Consumer) Process(ctx context.Context, data []byte) error {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		c.logg.Warn(ctx, "dropping undecodable notification event")
		return nil
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"type":      string(event.Type),
		"recipient": event.RecipientUserID.String(),
	})

	if event.RecipientUserID == uuid.Nil || !event.Type.IsValid() {
		c.logg.Warn(logCtx, "dropping malformed notification event")
		return nil
	}

	_, err := c.repo.Create(ctx, &models.Notification{
		RecipientUserID: event.RecipientUserID,
		Type:            event.Type,
		Title:           event.Title,
		Body:            event.Body,
	})
	if err != nil {
		c.logg.Error(logCtx, "insert notification row", err)
		return err
	}

	c.logg.Info(logCtx, "notification stored")
	return nil
}

// Run receives from the subscription until the context is cancelled.
func (c *Consumer) Run(ctx context.Context, sub *pubsublib.Subscriber) error {
	if sub == nil {
		return fmt.Errorf("subscriber required")
	}
	return sub.Receive(ctx, func(ctx context.Context, msg *pubsublib.Message) {
		if err := c.Process(ctx, msg.Data); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}
