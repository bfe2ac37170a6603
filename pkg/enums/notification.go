package enums

import "fmt"

// NotificationType labels the domain event behind a notification row.
type NotificationType string

const (
	NotificationOrderPlaced     NotificationType = "order_placed"
	NotificationItemDecided     NotificationType = "item_decided"
	NotificationDeliveryUpdated NotificationType = "delivery_updated"
	NotificationPaymentSettled  NotificationType = "payment_settled"
	NotificationReviewCreated   NotificationType = "review_created"
)

var validNotificationTypes = []NotificationType{
	NotificationOrderPlaced,
	NotificationItemDecided,
	NotificationDeliveryUpdated,
	NotificationPaymentSettled,
	NotificationReviewCreated,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
