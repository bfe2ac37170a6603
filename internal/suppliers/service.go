package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
)

// Service defines the behavior needed by the supplier profile controller.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*SupplierDetailDTO, error)
	SaveProfile(ctx context.Context, userID uuid.UUID, req SaveProfileRequest) (*SupplierDetailDTO, error)
	ReportLocation(ctx context.Context, userID uuid.UUID, location string) error
}

// SaveProfileRequest is the create-or-update payload for a supplier profile.
type SaveProfileRequest struct {
	VehicleType   string `json:"vehicle_type" validate:"required"`
	ServiceArea   string `json:"service_area" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
}

type detailRepository interface {
	Create(ctx context.Context, dto CreateDetailDTO) (*models.SupplierDetail, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SupplierDetail, error)
	Update(ctx context.Context, userID uuid.UUID, dto UpdateDetailDTO) (*models.SupplierDetail, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, location string) error
}

type service struct {
	details detailRepository
}

// NewService constructs a supplier profile service.
func NewService(details detailRepository) (Service, error) {
	if details == nil {
		return nil, fmt.Errorf("supplier detail repository is required")
	}
	return &service{details: details}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*SupplierDetailDTO, error) {
	detail, err := s.details.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profile")
	}
	return FromModel(detail), nil
}

func (s *service) SaveProfile(ctx context.Context, userID uuid.UUID, req SaveProfileRequest) (*SupplierDetailDTO, error) {
	vehicle := strings.TrimSpace(req.VehicleType)
	area := strings.TrimSpace(req.ServiceArea)
	license := strings.TrimSpace(req.LicenseNumber)
	if vehicle == "" || area == "" || license == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle_type, service_area, and license_number are required")
	}

	_, err := s.details.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		updated, err := s.details.Update(ctx, userID, UpdateDetailDTO{
			VehicleType:   &vehicle,
			ServiceArea:   &area,
			LicenseNumber: &license,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier profile")
		}
		return FromModel(updated), nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := s.details.Create(ctx, CreateDetailDTO{
			UserID:        userID,
			VehicleType:   vehicle,
			ServiceArea:   area,
			LicenseNumber: license,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier profile")
		}
		return FromModel(created), nil

	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profile")
	}
}

func (s *service) ReportLocation(ctx context.Context, userID uuid.UUID, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}

	if _, err := s.details.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profile")
	}

	if err := s.details.UpdateLocation(ctx, userID, location); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier location")
	}
	return nil
}
