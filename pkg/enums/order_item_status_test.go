package enums

import "testing"

func TestOrderItemStatusForwardPath(t *testing.T) {
	sequence := []OrderItemStatus{
		OrderItemStatusPending,
		OrderItemStatusAccepted,
		OrderItemStatusAssigned,
		OrderItemStatusPickupInProgress,
		OrderItemStatusPickedUp,
		OrderItemStatusInTransit,
		OrderItemStatusDelivered,
	}
	for i := 0; i < len(sequence)-1; i++ {
		if !sequence[i].CanTransitionTo(sequence[i+1]) {
			t.Fatalf("%s should transition to %s", sequence[i], sequence[i+1])
		}
	}
}

func TestOrderItemStatusRejectsSkippedAndBackwardTransitions(t *testing.T) {
	illegal := []struct {
		from OrderItemStatus
		to   OrderItemStatus
	}{
		{OrderItemStatusPending, OrderItemStatusDelivered},
		{OrderItemStatusPending, OrderItemStatusAssigned},
		{OrderItemStatusAccepted, OrderItemStatusInTransit},
		{OrderItemStatusInTransit, OrderItemStatusAssigned},
		{OrderItemStatusPickedUp, OrderItemStatusPickupInProgress},
		{OrderItemStatusDelivered, OrderItemStatusInTransit},
		{OrderItemStatusDeclined, OrderItemStatusAccepted},
		{OrderItemStatusFailed, OrderItemStatusAssigned},
		{OrderItemStatusCancelled, OrderItemStatusPending},
	}
	for _, tt := range illegal {
		if tt.from.CanTransitionTo(tt.to) {
			t.Fatalf("%s should not transition to %s", tt.from, tt.to)
		}
	}
}

func TestOrderItemStatusEscapeTransitions(t *testing.T) {
	inFlight := []OrderItemStatus{
		OrderItemStatusAssigned,
		OrderItemStatusPickupInProgress,
		OrderItemStatusPickedUp,
		OrderItemStatusInTransit,
	}
	for _, from := range inFlight {
		if !from.CanTransitionTo(OrderItemStatusFailed) {
			t.Fatalf("%s should transition to failed", from)
		}
		if !from.CanTransitionTo(OrderItemStatusCancelled) {
			t.Fatalf("%s should transition to cancelled", from)
		}
	}
	// Pending and accepted items leave via decline or supplier claim, never the escapes.
	if OrderItemStatusPending.CanTransitionTo(OrderItemStatusFailed) {
		t.Fatalf("pending items cannot fail")
	}
	if OrderItemStatusAccepted.CanTransitionTo(OrderItemStatusCancelled) {
		t.Fatalf("accepted items cannot be cancelled before assignment")
	}
}

func TestOrderItemStatusTerminal(t *testing.T) {
	for _, status := range []OrderItemStatus{OrderItemStatusDeclined, OrderItemStatusDelivered, OrderItemStatusFailed, OrderItemStatusCancelled} {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
		if len(status.NextStatuses()) != 0 {
			t.Fatalf("%s should have no successors", status)
		}
	}
	for _, status := range []OrderItemStatus{OrderItemStatusPending, OrderItemStatusAccepted, OrderItemStatusAssigned, OrderItemStatusInTransit} {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestParseOrderItemStatus(t *testing.T) {
	parsed, err := ParseOrderItemStatus("pickup_in_progress")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != OrderItemStatusPickupInProgress {
		t.Fatalf("unexpected status %s", parsed)
	}
	if _, err := ParseOrderItemStatus("Shipped"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
