package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// Notification is a persisted, per-user inbox entry written by the worker.
type Notification struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientUserID uuid.UUID              `gorm:"column:recipient_user_id;type:uuid;not null;index"`
	Type            enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title           string                 `gorm:"column:title;not null"`
	Body            string                 `gorm:"column:body;not null"`
	ReadAt          *time.Time             `gorm:"column:read_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}
