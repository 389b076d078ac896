package dto

import "github.com/tristudio/studio-scheduler-api/internal/models"

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse returns the issued token and the account profile.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"`
	User      models.User `json:"user"`
}

// RegisterRequest creates a staff account. Admin-only.
type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	FullName string          `json:"fullName" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMIN MANAGER VIEWER"`
}
