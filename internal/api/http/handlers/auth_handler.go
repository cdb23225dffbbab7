package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/binwatch/internal/access"
	"github.com/spec-kit/binwatch/internal/api/dto"
	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/service"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// AuthHandler exposes registration, login and verification endpoints.
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register handles POST /auth/register. The account starts unverified; the
// caller is pointed at the verification flow rather than handed a token.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return apperrors.NewValidationError("display_name, email, password required", nil)
	}

	state, err := h.accounts.Register(c.UserContext(), req.Email, req.Password, req.DisplayName, req.Region)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":    profileResponse(state.Profile),
			"message": "registration successful; check your email to verify your account before logging in",
		},
	})
}

// Login handles POST /auth/login and POST /auth/admin/login. The admin path
// exists for the login-redirect routing policy; credentials and checks are
// identical.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	state, token, expiresAt, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": profileResponse(state.Profile),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.accounts.Logout(c.UserContext(), state.Session); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "signed out"}})
}

// VerifyEmail handles GET /auth/verify-email?token= — the emailed link.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.accounts.VerifyEmail(c.UserContext(), c.Query("token")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "email verified; you can now log in"}})
}

// ResendVerification handles POST /auth/verify/resend.
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.accounts.ResendVerification(c.UserContext(), state.Session); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "verification email sent"}})
}

// CheckVerification handles POST /auth/verify/check — the "I've verified my
// email" poll target. Idempotent; never writes when flags already agree.
func (h *AuthHandler) CheckVerification(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	var session *domain.Session
	if state != nil {
		session = state.Session
	}
	status, err := h.accounts.CheckEmailVerification(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VerificationStatusResponse{
		IsVerified:     status.IsVerified,
		ProfileUpdated: status.ProfileUpdated,
	}})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}
	if state.Profile == nil {
		return apperrors.NewProfileMissing()
	}
	return c.JSON(fiber.Map{"data": profileResponse(state.Profile)})
}

func profileResponse(profile *domain.UserProfile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.ProfileResponse{
		UID:           profile.UID,
		Email:         profile.Email,
		DisplayName:   profile.DisplayName,
		Role:          profile.Role,
		Region:        profile.Region,
		EmailVerified: profile.EmailVerified,
		CreatedAt:     profile.CreatedAt,
		UpdatedAt:     profile.UpdatedAt,
	}
}
