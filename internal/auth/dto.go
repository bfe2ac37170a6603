package auth

import (
	"github.com/fasalbajar/fasalbajar-backend/internal/suppliers"
	"github.com/fasalbajar/fasalbajar-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest rotates a refresh token. The access token may be expired.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries the replacement token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterResponse returns the created user plus the supplier profile when one was created.
type RegisterResponse struct {
	User           *users.UserDTO               `json:"user"`
	SupplierDetail *suppliers.SupplierDetailDTO `json:"supplier_detail,omitempty"`
}
