package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/auth"
	"github.com/spec-kit/binwatch/internal/config"
	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/repository"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// ErrProfileMissing marks a session with no backing profile document. A
// terminal condition, distinct from a retryable store failure; the profile
// is never auto-created from here.
var ErrProfileMissing = errors.New("profile missing")

// SessionState is the synchronized view of one signed-in actor: the live
// session plus its profile, nil when sync is outstanding or the profile
// does not exist.
type SessionState struct {
	Session *domain.Session
	Profile *domain.UserProfile
}

// VerificationStatus reports an idempotent verification re-check.
type VerificationStatus struct {
	IsVerified     bool
	ProfileUpdated bool
}

// AccountService is the auth/profile synchronizer: it keeps the profile's
// verification flag consistent with the credential service's authoritative
// flag and drives registration and login.
type AccountService struct {
	ids         auth.CredentialService
	profiles    repository.ProfileRepository
	logger      *zap.Logger
	minPassword int
}

// AccountDependencies bundles collaborator requirements.
type AccountDependencies struct {
	Credentials auth.CredentialService
	ProfileRepo repository.ProfileRepository
	Logger      *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies) *AccountService {
	minPassword := cfg.MinPasswordLength
	if minPassword <= 0 {
		minPassword = 6
	}
	return &AccountService{
		ids:         deps.Credentials,
		profiles:    deps.ProfileRepo,
		logger:      deps.Logger,
		minPassword: minPassword,
	}
}

// Register creates a credential account and its profile document. All input
// validation happens before any credential-service call, so a short password
// or bad region never reaches the provider.
func (s *AccountService) Register(ctx context.Context, email, password, displayName string, region domain.Region) (*SessionState, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("a valid email address is required", nil)
	}
	if len(password) < s.minPassword {
		return nil, apperrors.NewValidationError("password should be at least 6 characters", nil)
	}
	if displayName == "" {
		return nil, apperrors.NewValidationError("display name is required", nil)
	}
	if !region.IsValid() {
		return nil, apperrors.NewValidationError("please select a valid state", map[string]any{"region": region})
	}

	session, err := s.ids.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return nil, apperrors.NewRegistrationError("email already registered", nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if err := s.ids.UpdateDisplayName(ctx, session, displayName); err != nil {
		s.logger.Warn("set display name failed", zap.String("uid", session.UID), zap.Error(err))
	}
	if err := s.ids.SendVerificationEmail(ctx, session); err != nil {
		s.logger.Warn("verification email failed", zap.String("uid", session.UID), zap.Error(err))
	}

	// A brand-new account is defined to start unverified; the session's
	// pre-verification flag is deliberately not copied.
	profile := &domain.UserProfile{
		UID:           session.UID,
		Email:         email,
		DisplayName:   displayName,
		Role:          domain.RoleUser,
		Region:        region,
		EmailVerified: false,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// The credential account already exists: the caller must surface this
		// as partially created rather than retrying signup.
		return nil, apperrors.NewRegistrationError(
			"profile creation failed after signup; the account exists but is incomplete",
			map[string]any{"stage": "profile_creation", "uid": session.UID})
	}

	session, err = s.ids.Reload(ctx, session)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	profile, _, err = s.syncProfile(ctx, session)
	if err != nil && !errors.Is(err, ErrProfileMissing) {
		return nil, err
	}
	return &SessionState{Session: session, Profile: profile}, nil
}

// Login authenticates and enforces the verified-email policy: an unverified
// account is denied, with a fresh verification email as the side effect.
func (s *AccountService) Login(ctx context.Context, email, password string) (*SessionState, string, time.Time, error) {
	session, err := s.ids.Authenticate(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}

	// The provider's cached flag is not trusted; reload before reading it.
	session, err = s.ids.Reload(ctx, session)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}

	if !session.EmailVerified {
		if err := s.ids.SendVerificationEmail(ctx, session); err != nil {
			s.logger.Warn("verification email failed", zap.String("uid", session.UID), zap.Error(err))
		}
		return nil, "", time.Time{}, apperrors.NewEmailNotVerified()
	}

	profile, err := s.SyncProfile(ctx, session)
	if err != nil && !errors.Is(err, ErrProfileMissing) {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.ids.IssueToken(session)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return &SessionState{Session: session, Profile: profile}, token, expiresAt, nil
}

// Logout destroys the live session.
func (s *AccountService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	if err := s.ids.SignOut(ctx, session); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// Resolve is the per-request session observation: it maps a bearer token to
// synchronized state, force-refreshing the verification flag before reading
// it. An empty or dead token resolves to the signed-out state.
func (s *AccountService) Resolve(ctx context.Context, token string) (*SessionState, error) {
	if token == "" {
		return &SessionState{}, nil
	}

	session, err := s.ids.SessionFromToken(ctx, token)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if session == nil {
		return &SessionState{}, nil
	}

	session, err = s.ids.Reload(ctx, session)
	if err != nil {
		// Provider failures during reload are surfaced, not swallowed.
		return nil, apperrors.NewStoreUnavailable(err)
	}

	profile, err := s.SyncProfile(ctx, session)
	if err != nil && !errors.Is(err, ErrProfileMissing) {
		return nil, err
	}
	return &SessionState{Session: session, Profile: profile}, nil
}

// SyncProfile reconciles the profile's verification mirror with the session's
// authoritative flag. Missing profile yields ErrProfileMissing; transient
// store failures degrade to a nil profile so sign-in is never blocked.
func (s *AccountService) SyncProfile(ctx context.Context, session *domain.Session) (*domain.UserProfile, error) {
	profile, _, err := s.syncProfile(ctx, session)
	return profile, err
}

// CheckEmailVerification is the idempotent re-check behind the verification
// poll. Safe with no active session; never writes the profile store when the
// flags already agree.
func (s *AccountService) CheckEmailVerification(ctx context.Context, session *domain.Session) (*VerificationStatus, error) {
	if session == nil {
		return &VerificationStatus{}, nil
	}

	session, err := s.ids.Reload(ctx, session)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	_, updated, err := s.syncProfile(ctx, session)
	if err != nil && !errors.Is(err, ErrProfileMissing) {
		return nil, err
	}
	return &VerificationStatus{IsVerified: session.EmailVerified, ProfileUpdated: updated}, nil
}

// VerifyEmail completes the out-of-band email link.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.NewValidationError("verification token required", nil)
	}
	if err := s.ids.VerifyEmail(ctx, token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return apperrors.NewValidationError("invalid or expired verification token", nil)
		}
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// ResendVerification rotates and re-sends the verification email.
func (s *AccountService) ResendVerification(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return apperrors.NewUnauthorized("session required")
	}
	if err := s.ids.SendVerificationEmail(ctx, session); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// syncProfile implements read-then-decide-then-write with a re-read of the
// authoritative post-write value. Last-write-wins is sufficient: the
// synchronizer is the sole writer of the mirror field.
func (s *AccountService) syncProfile(ctx context.Context, session *domain.Session) (*domain.UserProfile, bool, error) {
	profile, err := s.profiles.GetByUID(ctx, session.UID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, ErrProfileMissing
		}
		s.logger.Error("profile read failed", zap.String("uid", session.UID), zap.Error(err))
		return nil, false, nil
	}

	if profile.EmailVerified == session.EmailVerified {
		return profile, false, nil
	}

	if err := s.profiles.UpdateEmailVerified(ctx, session.UID, session.EmailVerified); err != nil {
		s.logger.Error("profile verification sync failed", zap.String("uid", session.UID), zap.Error(err))
		return profile, false, nil
	}

	updated, err := s.profiles.GetByUID(ctx, session.UID)
	if err != nil {
		s.logger.Error("profile re-read failed", zap.String("uid", session.UID), zap.Error(err))
		return profile, true, nil
	}
	return updated, true, nil
}
