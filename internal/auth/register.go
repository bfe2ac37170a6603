package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/suppliers"
	"github.com/fasalbajar/fasalbajar-backend/internal/users"
	"github.com/fasalbajar/fasalbajar-backend/pkg/config"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
	"github.com/fasalbajar/fasalbajar-backend/pkg/security"
)

// SupplierProfilePayload carries the delivery capability fields required for supplier signup.
type SupplierProfilePayload struct {
	VehicleType   string `json:"vehicle_type" validate:"required"`
	ServiceArea   string `json:"service_area" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
}

// RegisterRequest contains the payload required to onboard a marketplace account.
type RegisterRequest struct {
	Username        string                  `json:"username" validate:"required,min=3,max=50"`
	Email           string                  `json:"email" validate:"required,email"`
	Password        string                  `json:"password" validate:"required,min=8"`
	Role            enums.UserRole          `json:"role" validate:"required"`
	ContactNumber   *string                 `json:"contact_number,omitempty"`
	Location        *string                 `json:"location,omitempty"`
	SupplierProfile *SupplierProfilePayload `json:"supplier_profile,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.Role.IsValid() || req.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be farmer, buyer, or supplier")
	}
	if req.Role == enums.UserRoleSupplier && req.SupplierProfile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier_profile is required for supplier accounts")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		user   *models.User
		detail *models.SupplierDetail
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		supplierRepo := suppliers.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}
		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}

		user, err = userRepo.Create(ctx, users.CreateUserDTO{
			Username:      username,
			Email:         email,
			PasswordHash:  passwordHash,
			Role:          req.Role,
			ContactNumber: req.ContactNumber,
			Location:      req.Location,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		if req.Role == enums.UserRoleSupplier {
			detail, err = supplierRepo.Create(ctx, suppliers.CreateDetailDTO{
				UserID:        user.ID,
				VehicleType:   strings.TrimSpace(req.SupplierProfile.VehicleType),
				ServiceArea:   strings.TrimSpace(req.SupplierProfile.ServiceArea),
				LicenseNumber: strings.TrimSpace(req.SupplierProfile.LicenseNumber),
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier profile")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		User:           users.FromModel(user),
		SupplierDetail: suppliers.FromModel(detail),
	}, nil
}
