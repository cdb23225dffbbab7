package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/repository"
)

// Sentinel errors surfaced by the credential service.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
)

// CredentialService is the identity provider: it owns credential records,
// issues live sessions, and is the authority for the email-verification flag.
type CredentialService interface {
	Register(ctx context.Context, email, password string) (*domain.Session, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Session, error)
	UpdateDisplayName(ctx context.Context, session *domain.Session, displayName string) error
	SendVerificationEmail(ctx context.Context, session *domain.Session) error
	Reload(ctx context.Context, session *domain.Session) (*domain.Session, error)
	SignOut(ctx context.Context, session *domain.Session) error
	SessionFromToken(ctx context.Context, token string) (*domain.Session, error)
	IssueToken(session *domain.Session) (string, time.Time, error)
	VerifyEmail(ctx context.Context, token string) error
}

type credentialService struct {
	creds      repository.CredentialRepository
	sessions   SessionStore
	tokens     *TokenManager
	mailer     Mailer
	bcryptCost int
}

// CredentialDependencies bundles collaborator requirements.
type CredentialDependencies struct {
	Credentials repository.CredentialRepository
	Sessions    SessionStore
	Tokens      *TokenManager
	Mailer      Mailer
	BcryptCost  int
}

// NewCredentialService builds the identity provider.
func NewCredentialService(deps CredentialDependencies) CredentialService {
	return &credentialService{
		creds:      deps.Credentials,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		mailer:     deps.Mailer,
		bcryptCost: deps.BcryptCost,
	}
}

// Register creates the credential record and a live (unverified) session.
func (s *credentialService) Register(ctx context.Context, email, password string) (*domain.Session, error) {
	if _, err := s.creds.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	cred := &repository.Credential{
		UID:           uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: false,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, err
	}

	return s.openSession(ctx, cred)
}

// Authenticate verifies credentials and opens a live session.
func (s *credentialService) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := ComparePassword(cred.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, cred)
}

func (s *credentialService) UpdateDisplayName(ctx context.Context, session *domain.Session, displayName string) error {
	if err := s.creds.SetDisplayName(ctx, session.UID, displayName); err != nil {
		return err
	}
	session.DisplayName = displayName
	return s.sessions.Put(ctx, session)
}

// SendVerificationEmail rotates the verification token and mails the link.
func (s *credentialService) SendVerificationEmail(ctx context.Context, session *domain.Session) error {
	token := uuid.NewString()
	if err := s.creds.SetVerificationToken(ctx, session.UID, token); err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, session.Email, token)
}

// Reload re-reads the authoritative credential record and refreshes the live
// session's cached fields. The cached flag must never be trusted without this.
func (s *credentialService) Reload(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	cred, err := s.creds.GetByUID(ctx, session.UID)
	if err != nil {
		return nil, err
	}
	session.Email = cred.Email
	session.DisplayName = cred.DisplayName
	session.EmailVerified = cred.EmailVerified
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *credentialService) SignOut(ctx context.Context, session *domain.Session) error {
	return s.sessions.Delete(ctx, session.ID)
}

// SessionFromToken resolves a bearer token to its live session. Returns
// (nil, nil) for a valid-but-signed-out or unknown session.
func (s *credentialService) SessionFromToken(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, nil
	}
	return s.sessions.Get(ctx, claims.SessionID)
}

func (s *credentialService) IssueToken(session *domain.Session) (string, time.Time, error) {
	return s.tokens.GenerateToken(session.ID, session.UID)
}

// VerifyEmail consumes an emailed token and flips the authoritative flag.
// Live sessions pick the change up on their next reload.
func (s *credentialService) VerifyEmail(ctx context.Context, token string) error {
	cred, err := s.creds.GetByVerificationToken(ctx, token)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrInvalidToken
		}
		return err
	}
	return s.creds.MarkVerified(ctx, cred.UID)
}

func (s *credentialService) openSession(ctx context.Context, cred *repository.Credential) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:            uuid.NewString(),
		UID:           cred.UID,
		Email:         cred.Email,
		DisplayName:   cred.DisplayName,
		EmailVerified: cred.EmailVerified,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
