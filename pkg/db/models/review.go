package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// Review is a buyer's rating of a farmer or supplier. The (user, entity) pair
// is unique; the constraint backs the duplicate-review conflict mapping.
type Review struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reviews_user_entity"`
	EntityID   uuid.UUID              `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:idx_reviews_user_entity;index"`
	EntityType enums.ReviewEntityType `gorm:"column:entity_type;type:text;not null"`
	Rating     int                    `gorm:"column:rating;not null"`
	Comment    *string                `gorm:"column:comment"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
