package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Credential is the authoritative identity record behind a user account.
// email_verified here is the source of truth the synchronizer mirrors into
// the profile store.
type Credential struct {
	UID               string
	Email             string
	PasswordHash      string
	DisplayName       string
	EmailVerified     bool
	VerificationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CredentialRepository defines persistence access for credential records.
type CredentialRepository interface {
	Create(ctx context.Context, cred *Credential) error
	GetByUID(ctx context.Context, uid string) (*Credential, error)
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetByVerificationToken(ctx context.Context, token string) (*Credential, error)
	SetDisplayName(ctx context.Context, uid, displayName string) error
	SetVerificationToken(ctx context.Context, uid, token string) error
	MarkVerified(ctx context.Context, uid string) error
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) Create(ctx context.Context, cred *Credential) error {
	const query = `
        INSERT INTO credentials (uid, email, password_hash, display_name, email_verified, verification_token)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cred.UID,
		cred.Email,
		cred.PasswordHash,
		cred.DisplayName,
		cred.EmailVerified,
		cred.VerificationToken,
	).Scan(&cred.CreatedAt, &cred.UpdatedAt)
}

func (r *credentialRepository) GetByUID(ctx context.Context, uid string) (*Credential, error) {
	const query = `
        SELECT uid, email, password_hash, display_name, email_verified, verification_token, created_at, updated_at
        FROM credentials WHERE uid=$1`
	return r.fetchSingle(ctx, query, uid)
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	const query = `
        SELECT uid, email, password_hash, display_name, email_verified, verification_token, created_at, updated_at
        FROM credentials WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *credentialRepository) GetByVerificationToken(ctx context.Context, token string) (*Credential, error) {
	const query = `
        SELECT uid, email, password_hash, display_name, email_verified, verification_token, created_at, updated_at
        FROM credentials WHERE verification_token=$1`
	return r.fetchSingle(ctx, query, token)
}

func (r *credentialRepository) fetchSingle(ctx context.Context, query string, arg any) (*Credential, error) {
	var cred Credential
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cred.UID,
		&cred.Email,
		&cred.PasswordHash,
		&cred.DisplayName,
		&cred.EmailVerified,
		&cred.VerificationToken,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) SetDisplayName(ctx context.Context, uid, displayName string) error {
	const query = `UPDATE credentials SET display_name=$1, updated_at=NOW() WHERE uid=$2`
	return r.exec(ctx, query, displayName, uid)
}

func (r *credentialRepository) SetVerificationToken(ctx context.Context, uid, token string) error {
	const query = `UPDATE credentials SET verification_token=$1, updated_at=NOW() WHERE uid=$2`
	return r.exec(ctx, query, token, uid)
}

func (r *credentialRepository) MarkVerified(ctx context.Context, uid string) error {
	const query = `UPDATE credentials SET email_verified=TRUE, verification_token=NULL, updated_at=NOW() WHERE uid=$1`
	return r.exec(ctx, query, uid)
}

func (r *credentialRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
