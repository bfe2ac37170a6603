package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
)

type stubDetailRepo struct {
	detail       *models.SupplierDetail
	created      *CreateDetailDTO
	updated      *UpdateDetailDTO
	lastLocation string
}

func (s *stubDetailRepo) Create(_ context.Context, dto CreateDetailDTO) (*models.SupplierDetail, error) {
	s.created = &dto
	s.detail = dto.ToModel()
	s.detail.ID = uuid.New()
	return s.detail, nil
}

func (s *stubDetailRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*models.SupplierDetail, error) {
	if s.detail == nil || s.detail.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.detail, nil
}

func (s *stubDetailRepo) Update(_ context.Context, _ uuid.UUID, dto UpdateDetailDTO) (*models.SupplierDetail, error) {
	s.updated = &dto
	if dto.VehicleType != nil {
		s.detail.VehicleType = *dto.VehicleType
	}
	if dto.ServiceArea != nil {
		s.detail.ServiceArea = *dto.ServiceArea
	}
	if dto.LicenseNumber != nil {
		s.detail.LicenseNumber = *dto.LicenseNumber
	}
	return s.detail, nil
}

func (s *stubDetailRepo) UpdateLocation(_ context.Context, _ uuid.UUID, location string) error {
	s.lastLocation = location
	return nil
}

func TestSaveProfileCreatesWhenMissing(t *testing.T) {
	repo := &stubDetailRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	userID := uuid.New()
	dto, err := svc.SaveProfile(context.Background(), userID, SaveProfileRequest{
		VehicleType:   "pickup truck",
		ServiceArea:   "Kathmandu",
		LicenseNumber: "BA-12-345",
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if repo.created == nil {
		t.Fatalf("expected create to be called")
	}
	if dto.UserID != userID || dto.ServiceArea != "Kathmandu" {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestSaveProfileUpdatesExisting(t *testing.T) {
	userID := uuid.New()
	repo := &stubDetailRepo{detail: &models.SupplierDetail{
		ID:          uuid.New(),
		UserID:      userID,
		VehicleType: "bike",
		ServiceArea: "Lalitpur",
	}}
	svc, _ := NewService(repo)

	dto, err := svc.SaveProfile(context.Background(), userID, SaveProfileRequest{
		VehicleType:   "van",
		ServiceArea:   "Lalitpur",
		LicenseNumber: "BA-99-000",
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if repo.created != nil {
		t.Fatalf("expected no create on existing profile")
	}
	if repo.updated == nil {
		t.Fatalf("expected update to be called")
	}
	if dto.VehicleType != "van" {
		t.Fatalf("expected updated vehicle type, got %s", dto.VehicleType)
	}
}

func TestSaveProfileRejectsBlankFields(t *testing.T) {
	svc, _ := NewService(&stubDetailRepo{})

	_, err := svc.SaveProfile(context.Background(), uuid.New(), SaveProfileRequest{
		VehicleType: "  ",
		ServiceArea: "Kathmandu",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReportLocationRequiresProfile(t *testing.T) {
	svc, _ := NewService(&stubDetailRepo{})

	err := svc.ReportLocation(context.Background(), uuid.New(), "Bhaktapur")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReportLocationStoresValue(t *testing.T) {
	userID := uuid.New()
	repo := &stubDetailRepo{detail: &models.SupplierDetail{UserID: userID}}
	svc, _ := NewService(repo)

	if err := svc.ReportLocation(context.Background(), userID, " Patan "); err != nil {
		t.Fatalf("report location: %v", err)
	}
	if repo.lastLocation != "Patan" {
		t.Fatalf("expected trimmed location, got %q", repo.lastLocation)
	}
}
