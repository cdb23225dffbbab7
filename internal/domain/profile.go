package domain

import "time"

// UserRole enumerates application roles.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super-admin"
)

// IsValid reports whether the role is a known role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role grants admin-level access.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// UserProfile is the persisted application record backing a session, keyed by uid.
// The synchronizer is the sole writer of the EmailVerified mirror field.
type UserProfile struct {
	UID           string
	Email         string
	DisplayName   string
	Role          UserRole
	Region        Region
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
