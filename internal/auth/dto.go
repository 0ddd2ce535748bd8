package auth

import (
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/internal/users"
)

// RegisterRequest captures the payload for creating a storefront account.
// Waist and inseam are optional fit measurements, in inches.
type RegisterRequest struct {
	Email    string           `json:"email" validate:"required,email"`
	Password string           `json:"password" validate:"required,min=8"`
	Waist    *decimal.Decimal `json:"waist,omitempty"`
	Inseam   *decimal.Decimal `json:"inseam,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains the token pair and user produced by a successful
// register, login, or refresh.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user,omitempty"`
}
