package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
)

// SupplierDetailDTO is the transport shape for a supplier's delivery profile.
type SupplierDetailDTO struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	VehicleType     string    `json:"vehicle_type"`
	ServiceArea     string    `json:"service_area"`
	LicenseNumber   string    `json:"license_number"`
	CurrentLocation *string   `json:"current_location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateDetailDTO holds the data required to persist a supplier profile.
type CreateDetailDTO struct {
	UserID        uuid.UUID
	VehicleType   string
	ServiceArea   string
	LicenseNumber string
}

// UpdateDetailDTO carries mutable profile fields. Nil means leave unchanged.
type UpdateDetailDTO struct {
	VehicleType   *string
	ServiceArea   *string
	LicenseNumber *string
}

func FromModel(d *models.SupplierDetail) *SupplierDetailDTO {
	if d == nil {
		return nil
	}
	return &SupplierDetailDTO{
		ID:              d.ID,
		UserID:          d.UserID,
		VehicleType:     d.VehicleType,
		ServiceArea:     d.ServiceArea,
		LicenseNumber:   d.LicenseNumber,
		CurrentLocation: d.CurrentLocation,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (c CreateDetailDTO) ToModel() *models.SupplierDetail {
	return &models.SupplierDetail{
		UserID:        c.UserID,
		VehicleType:   c.VehicleType,
		ServiceArea:   c.ServiceArea,
		LicenseNumber: c.LicenseNumber,
	}
}
