package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/binwatch/internal/domain"
)

// ProfileFilter captures super-admin user-management listing parameters.
type ProfileFilter struct {
	Region     *domain.Region
	Role       *domain.UserRole
	SearchTerm *string
}

// ProfileRepository defines persistence access for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error)
	UpdateEmailVerified(ctx context.Context, uid string, verified bool) error
	UpdateRole(ctx context.Context, uid string, role domain.UserRole) error
	UpdateRegion(ctx context.Context, uid string, region domain.Region) error
	List(ctx context.Context, filter ProfileFilter) ([]domain.UserProfile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `uid, email, display_name, role, region, email_verified, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO profiles (uid, email, display_name, role, region, email_verified)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.UID,
		profile.Email,
		profile.DisplayName,
		profile.Role,
		profile.Region,
		profile.EmailVerified,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uid=$1`

	var profile domain.UserProfile
	if err := r.pool.QueryRow(ctx, query, uid).Scan(
		&profile.UID,
		&profile.Email,
		&profile.DisplayName,
		&profile.Role,
		&profile.Region,
		&profile.EmailVerified,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpdateEmailVerified(ctx context.Context, uid string, verified bool) error {
	const query = `UPDATE profiles SET email_verified=$1, updated_at=NOW() WHERE uid=$2`
	return r.exec(ctx, query, verified, uid)
}

func (r *profileRepository) UpdateRole(ctx context.Context, uid string, role domain.UserRole) error {
	const query = `UPDATE profiles SET role=$1, updated_at=NOW() WHERE uid=$2`
	return r.exec(ctx, query, role, uid)
}

func (r *profileRepository) UpdateRegion(ctx context.Context, uid string, region domain.Region) error {
	const query = `UPDATE profiles SET region=$1, updated_at=NOW() WHERE uid=$2`
	return r.exec(ctx, query, region, uid)
}

func (r *profileRepository) List(ctx context.Context, filter ProfileFilter) ([]domain.UserProfile, error) {
	base := `SELECT ` + profileColumns + ` FROM profiles`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Region != nil {
		args = append(args, *filter.Region)
		clauses = append(clauses, fmt.Sprintf("region=$%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(display_name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *profileRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProfiles(rows pgx.Rows) ([]domain.UserProfile, error) {
	var result []domain.UserProfile
	for rows.Next() {
		var profile domain.UserProfile
		if err := rows.Scan(
			&profile.UID,
			&profile.Email,
			&profile.DisplayName,
			&profile.Role,
			&profile.Region,
			&profile.EmailVerified,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
