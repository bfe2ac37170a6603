package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID            uuid.UUID      `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	Role          enums.UserRole `json:"role"`
	ContactNumber *string        `json:"contact_number,omitempty"`
	Location      *string        `json:"location,omitempty"`
	ProfileImage  *string        `json:"profile_image,omitempty"`
	IsActive      bool           `json:"is_active"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username      string
	Email         string
	PasswordHash  string
	Role          enums.UserRole
	ContactNumber *string
	Location      *string
}

// UpdateProfileDTO carries the mutable profile fields. Nil means leave unchanged.
type UpdateProfileDTO struct {
	ContactNumber *string
	Location      *string
	ProfileImage  *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		ContactNumber: u.ContactNumber,
		Location:      u.Location,
		ProfileImage:  u.ProfileImage,
		IsActive:      u.IsActive,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:      c.Username,
		Email:         c.Email,
		PasswordHash:  c.PasswordHash,
		Role:          c.Role,
		ContactNumber: c.ContactNumber,
		Location:      c.Location,
		IsActive:      true,
	}
}
