package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
)

// Repository exposes supplier detail persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a suppliers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a supplier detail row and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateDetailDTO) (*models.SupplierDetail, error) {
	detail := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

// FindByUserID loads the detail row owned by the given supplier user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SupplierDetail, error) {
	var detail models.SupplierDetail
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// Update applies the provided fields and returns the fresh row.
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, dto UpdateDetailDTO) (*models.SupplierDetail, error) {
	updates := map[string]any{}
	if dto.VehicleType != nil {
		updates["vehicle_type"] = *dto.VehicleType
	}
	if dto.ServiceArea != nil {
		updates["service_area"] = *dto.ServiceArea
	}
	if dto.LicenseNumber != nil {
		updates["license_number"] = *dto.LicenseNumber
	}

	if len(updates) > 0 {
		err := r.db.WithContext(ctx).
			Model(&models.SupplierDetail{}).
			Where("user_id = ?", userID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByUserID(ctx, userID)
}

// UpdateLocation overwrites the supplier's reported current location.
func (r *Repository) UpdateLocation(ctx context.Context, userID uuid.UUID, location string) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierDetail{}).
		Where("user_id = ?", userID).
		UpdateColumn("current_location", location).Error
}
