package enums

import "fmt"

// OrderItemStatus tracks a single order line from placement through delivery.
type OrderItemStatus string

const (
	OrderItemStatusPending          OrderItemStatus = "pending"
	OrderItemStatusAccepted         OrderItemStatus = "accepted"
	OrderItemStatusDeclined         OrderItemStatus = "declined"
	OrderItemStatusAssigned         OrderItemStatus = "assigned"
	OrderItemStatusPickupInProgress OrderItemStatus = "pickup_in_progress"
	OrderItemStatusPickedUp         OrderItemStatus = "picked_up"
	OrderItemStatusInTransit        OrderItemStatus = "in_transit"
	OrderItemStatusDelivered        OrderItemStatus = "delivered"
	OrderItemStatusFailed           OrderItemStatus = "failed"
	OrderItemStatusCancelled        OrderItemStatus = "cancelled"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPending,
	OrderItemStatusAccepted,
	OrderItemStatusDeclined,
	OrderItemStatusAssigned,
	OrderItemStatusPickupInProgress,
	OrderItemStatusPickedUp,
	OrderItemStatusInTransit,
	OrderItemStatusDelivered,
	OrderItemStatusFailed,
	OrderItemStatusCancelled,
}

// orderItemTransitions is the authoritative lifecycle table. The farmer decides
// pending items, a supplier claims accepted items, and the assigned supplier
// walks the delivery sequence. Failed/cancelled are reachable from every
// in-flight delivery state.
var orderItemTransitions = map[OrderItemStatus][]OrderItemStatus{
	OrderItemStatusPending:          {OrderItemStatusAccepted, OrderItemStatusDeclined},
	OrderItemStatusAccepted:         {OrderItemStatusAssigned},
	OrderItemStatusAssigned:         {OrderItemStatusPickupInProgress, OrderItemStatusFailed, OrderItemStatusCancelled},
	OrderItemStatusPickupInProgress: {OrderItemStatusPickedUp, OrderItemStatusFailed, OrderItemStatusCancelled},
	OrderItemStatusPickedUp:         {OrderItemStatusInTransit, OrderItemStatusFailed, OrderItemStatusCancelled},
	OrderItemStatusInTransit:        {OrderItemStatusDelivered, OrderItemStatusFailed, OrderItemStatusCancelled},
}

// String implements fmt.Stringer.
func (o OrderItemStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (o OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the item's lifecycle.
func (o OrderItemStatus) IsTerminal() bool {
	switch o {
	case OrderItemStatusDeclined, OrderItemStatusDelivered, OrderItemStatusFailed, OrderItemStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is legal from the current status.
func (o OrderItemStatus) CanTransitionTo(next OrderItemStatus) bool {
	for _, candidate := range orderItemTransitions[o] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal successors of the current status.
func (o OrderItemStatus) NextStatuses() []OrderItemStatus {
	return orderItemTransitions[o]
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
