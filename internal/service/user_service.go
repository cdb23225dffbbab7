package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/repository"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// UserService covers super-admin user management: listing profiles and
// reassigning roles and regions.
type UserService struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(profiles repository.ProfileRepository, logger *zap.Logger) *UserService {
	return &UserService{profiles: profiles, logger: logger}
}

// List scans profiles with optional region/role filters and free-text search.
func (s *UserService) List(ctx context.Context, filter repository.ProfileFilter) ([]domain.UserProfile, error) {
	profiles, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return profiles, nil
}

// UpdateRole reassigns a user's role. A super-admin cannot change their own
// role, which keeps at least one super-admin reachable.
func (s *UserService) UpdateRole(ctx context.Context, actor *domain.UserProfile, uid string, role domain.UserRole) error {
	if !role.IsValid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if actor != nil && actor.UID == uid {
		return apperrors.NewForbidden("you cannot change your own role")
	}
	if err := s.profiles.UpdateRole(ctx, uid, role); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"uid": uid})
		}
		return apperrors.NewStoreUnavailable(err)
	}
	s.logger.Info("role updated", zap.String("uid", uid), zap.String("role", string(role)))
	return nil
}

// UpdateRegion reassigns a user's region within the fixed enumeration.
func (s *UserService) UpdateRegion(ctx context.Context, uid string, region domain.Region) error {
	if !region.IsValid() {
		return apperrors.NewValidationError("unknown region", map[string]any{"region": region})
	}
	if err := s.profiles.UpdateRegion(ctx, uid, region); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"uid": uid})
		}
		return apperrors.NewStoreUnavailable(err)
	}
	s.logger.Info("region updated", zap.String("uid", uid), zap.String("region", string(region)))
	return nil
}
