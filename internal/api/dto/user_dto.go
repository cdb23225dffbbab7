package dto

import "github.com/spec-kit/binwatch/internal/domain"

// UpdateRoleRequest payload for super-admin role reassignment.
type UpdateRoleRequest struct {
	Role domain.UserRole `json:"role"`
}

// UpdateRegionRequest payload for super-admin region reassignment.
type UpdateRegionRequest struct {
	Region domain.Region `json:"region"`
}
