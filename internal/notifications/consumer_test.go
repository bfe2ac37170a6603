package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
)

type stubInboxWriter struct {
	created []*models.Notification
	err     error
}

func (s *stubInboxWriter) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, n)
	return n, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestConsumerStoresValidEvent(t *testing.T) {
	repo := &stubInboxWriter{}
	consumer, err := NewConsumer(repo, testLogger())
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	recipient := uuid.New()
	payload, _ := json.Marshal(Event{
		Type:            enums.NotificationOrderPlaced,
		RecipientUserID: recipient,
		Title:           "New order",
		Body:            "Your produce was ordered",
	})

	if err := consumer.Process(context.Background(), payload); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one inbox row, got %d", len(repo.created))
	}
	if repo.created[0].RecipientUserID != recipient {
		t.Fatalf("wrong recipient stored")
	}
}

func TestConsumerDropsMalformedEvents(t *testing.T) {
	repo := &stubInboxWriter{}
	consumer, _ := NewConsumer(repo, testLogger())

	// Undecodable payloads and nil recipients are acked, not retried.
	if err := consumer.Process(context.Background(), []byte("not-json")); err != nil {
		t.Fatalf("expected nil error for bad json, got %v", err)
	}

	payload, _ := json.Marshal(Event{Type: enums.NotificationOrderPlaced})
	if err := consumer.Process(context.Background(), payload); err != nil {
		t.Fatalf("expected nil error for nil recipient, got %v", err)
	}

	payload, _ = json.Marshal(Event{Type: "bogus", RecipientUserID: uuid.New()})
	if err := consumer.Process(context.Background(), payload); err != nil {
		t.Fatalf("expected nil error for unknown type, got %v", err)
	}

	if len(repo.created) != 0 {
		t.Fatalf("expected no inbox rows, got %d", len(repo.created))
	}
}

func TestConsumerSurfacesInsertFailure(t *testing.T) {
	repo := &stubInboxWriter{err: errors.New("db down")}
	consumer, _ := NewConsumer(repo, testLogger())

	payload, _ := json.Marshal(Event{
		Type:            enums.NotificationPaymentSettled,
		RecipientUserID: uuid.New(),
		Title:           "Payment received",
		Body:            "Order FB-20250901-000001 paid",
	})

	if err := consumer.Process(context.Background(), payload); err == nil {
		t.Fatalf("expected insert failure to propagate for redelivery")
	}
}
