package dto

import (
	"time"

	"github.com/spec-kit/binwatch/internal/domain"
)

// RegisterRequest payload for new residents.
type RegisterRequest struct {
	DisplayName string        `json:"display_name"`
	Email       string        `json:"email"`
	Password    string        `json:"password"`
	Region      domain.Region `json:"region"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationStatusResponse reports the idempotent verification re-check.
type VerificationStatusResponse struct {
	IsVerified     bool `json:"is_verified"`
	ProfileUpdated bool `json:"profile_updated"`
}

// ProfileResponse is the application-level view of an account.
type ProfileResponse struct {
	UID           string          `json:"uid"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"display_name"`
	Role          domain.UserRole `json:"role"`
	Region        domain.Region   `json:"region"`
	EmailVerified bool            `json:"email_verified"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
