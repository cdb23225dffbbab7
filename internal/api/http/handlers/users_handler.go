package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/binwatch/internal/access"
	"github.com/spec-kit/binwatch/internal/api/dto"
	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/repository"
	"github.com/spec-kit/binwatch/internal/service"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// UsersHandler exposes the super-admin user management surface.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /admin/users with optional region, role and search filters.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := repository.ProfileFilter{}
	if region := c.Query("region"); region != "" {
		r := domain.Region(region)
		filter.Region = &r
	}
	if role := c.Query("role"); role != "" {
		r := domain.UserRole(role)
		filter.Role = &r
	}
	if term := c.Query("search"); term != "" {
		filter.SearchTerm = &term
	}

	profiles, err := h.users.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	out := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, *profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// UpdateRole handles PATCH /admin/users/:uid/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	var actor *domain.UserProfile
	if state != nil {
		actor = state.Profile
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.UpdateRole(c.UserContext(), actor, c.Params("uid"), req.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"uid": c.Params("uid"), "role": req.Role}})
}

// UpdateRegion handles PATCH /admin/users/:uid/region. Residents cannot move
// themselves; region reassignment is a super-admin operation.
func (h *UsersHandler) UpdateRegion(c *fiber.Ctx) error {
	var req dto.UpdateRegionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.UpdateRegion(c.UserContext(), c.Params("uid"), req.Region); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"uid": c.Params("uid"), "region": req.Region}})
}
