package orders

import (
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// DisplayStatus is the buyer-facing order status computed from the stored
// order row plus its items. It is never persisted.
type DisplayStatus string

const (
	DisplayStatusPending            DisplayStatus = "pending"
	DisplayStatusNeedsPayment       DisplayStatus = "needs_payment"
	DisplayStatusProcessing         DisplayStatus = "processing"
	DisplayStatusPartiallyDelivered DisplayStatus = "partially_delivered"
	DisplayStatusDelivered          DisplayStatus = "delivered"
	DisplayStatusDeclined           DisplayStatus = "declined"
	DisplayStatusCancelled          DisplayStatus = "cancelled"
)

// DeriveDisplayStatus computes the aggregate status at read time.
func DeriveDisplayStatus(order *models.Order, items []models.OrderItem) DisplayStatus {
	if order.Status == enums.OrderStatusCancelled {
		return DisplayStatusCancelled
	}
	if len(items) == 0 {
		return DisplayStatusPending
	}

	var accepted, declined, delivered, inFlight, settled int
	for _, item := range items {
		switch item.Status {
		case enums.OrderItemStatusAccepted:
			accepted++
		case enums.OrderItemStatusDeclined:
			declined++
			settled++
		case enums.OrderItemStatusDelivered:
			delivered++
			settled++
		case enums.OrderItemStatusAssigned,
			enums.OrderItemStatusPickupInProgress,
			enums.OrderItemStatusPickedUp,
			enums.OrderItemStatusInTransit:
			inFlight++
		case enums.OrderItemStatusFailed, enums.OrderItemStatusCancelled:
			settled++
		}
	}

	if declined == len(items) {
		return DisplayStatusDeclined
	}

	needsPayment := order.PaymentMethod == enums.PaymentMethodOnline &&
		order.PaymentStatus == enums.PaymentStatusPending &&
		accepted >= 1
	if needsPayment {
		return DisplayStatusNeedsPayment
	}

	if delivered > 0 && settled == len(items) {
		return DisplayStatusDelivered
	}
	if delivered > 0 {
		return DisplayStatusPartiallyDelivered
	}
	if inFlight > 0 || accepted > 0 {
		return DisplayStatusProcessing
	}
	return DisplayStatusPending
}
