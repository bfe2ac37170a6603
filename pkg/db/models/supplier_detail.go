package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplierDetail extends a supplier user with delivery capability data.
// One row per supplier user.
type SupplierDetail struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	VehicleType     string    `gorm:"column:vehicle_type;not null"`
	ServiceArea     string    `gorm:"column:service_area;not null"`
	LicenseNumber   string    `gorm:"column:license_number;not null"`
	CurrentLocation *string   `gorm:"column:current_location"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
