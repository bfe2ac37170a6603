package notifications

import (
	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// Event is the wire shape published to the notification topic. The worker
// turns one event into one inbox row for the recipient.
type Event struct {
	Type            enums.NotificationType `json:"type"`
	RecipientUserID uuid.UUID              `json:"recipient_user_id"`
	Title           string                 `json:"title"`
	Body            string                 `json:"body"`
}
