package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/config"
	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/repository"
	"github.com/spec-kit/binwatch/internal/service"
)

// fakeSessionStore serves a fixed unverified-session list.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions []domain.Session
}

func (f *fakeSessionStore) Put(ctx context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sessions {
		if f.sessions[i].ID == session.ID {
			f.sessions[i] = *session
			return nil
		}
	}
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			session := f.sessions[i]
			return &session, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeSessionStore) ListUnverified(ctx context.Context) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Session
	for _, session := range f.sessions {
		if !session.EmailVerified {
			out = append(out, session)
		}
	}
	return out, nil
}

// fakeCredentials reloads sessions from an authoritative verified map.
type fakeCredentials struct {
	mu       sync.Mutex
	verified map[string]bool
}

func (f *fakeCredentials) Register(ctx context.Context, email, password string) (*domain.Session, error) {
	return nil, nil
}

func (f *fakeCredentials) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	return nil, nil
}

func (f *fakeCredentials) UpdateDisplayName(ctx context.Context, session *domain.Session, displayName string) error {
	return nil
}

func (f *fakeCredentials) SendVerificationEmail(ctx context.Context, session *domain.Session) error {
	return nil
}

func (f *fakeCredentials) Reload(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.EmailVerified = f.verified[session.UID]
	return session, nil
}

func (f *fakeCredentials) SignOut(ctx context.Context, session *domain.Session) error {
	return nil
}

func (f *fakeCredentials) SessionFromToken(ctx context.Context, token string) (*domain.Session, error) {
	return nil, nil
}

func (f *fakeCredentials) IssueToken(session *domain.Session) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (f *fakeCredentials) VerifyEmail(ctx context.Context, token string) error {
	return nil
}

// fakeProfiles stores profiles keyed by uid.
type fakeProfiles struct {
	mu    sync.Mutex
	byUID map[string]*domain.UserProfile
}

func (f *fakeProfiles) Create(ctx context.Context, profile *domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *profile
	f.byUID[profile.UID] = &copied
	return nil
}

func (f *fakeProfiles) GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byUID[uid]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfiles) UpdateEmailVerified(ctx context.Context, uid string, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile, ok := f.byUID[uid]; ok {
		profile.EmailVerified = verified
		return nil
	}
	return pgx.ErrNoRows
}

func (f *fakeProfiles) UpdateRole(ctx context.Context, uid string, role domain.UserRole) error {
	return nil
}

func (f *fakeProfiles) UpdateRegion(ctx context.Context, uid string, region domain.Region) error {
	return nil
}

func (f *fakeProfiles) List(ctx context.Context, filter repository.ProfileFilter) ([]domain.UserProfile, error) {
	return nil, nil
}

func (f *fakeProfiles) verified(uid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byUID[uid]
	return ok && profile.EmailVerified
}

func TestWorkerSyncsVerifiedSessions(t *testing.T) {
	sessions := &fakeSessionStore{}
	_ = sessions.Put(context.Background(), &domain.Session{ID: "sess-1", UID: "uid-1", Email: "a@b.test"})

	creds := &fakeCredentials{verified: map[string]bool{"uid-1": true}}
	profiles := &fakeProfiles{byUID: map[string]*domain.UserProfile{
		"uid-1": {UID: "uid-1", Role: domain.RoleUser, Region: "Lagos"},
	}}

	accounts := service.NewAccountService(config.AuthConfig{}, service.AccountDependencies{
		Credentials: creds,
		ProfileRepo: profiles,
		Logger:      zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	worker := NewVerificationWorker(sessions, accounts, 5*time.Millisecond, zap.NewNop())

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for !profiles.verified("uid-1") {
		select {
		case <-deadline:
			cancel()
			t.Fatal("profile never synced to verified")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

func TestWorkerStopsPromptlyWhenIdle(t *testing.T) {
	accounts := service.NewAccountService(config.AuthConfig{}, service.AccountDependencies{
		Credentials: &fakeCredentials{verified: map[string]bool{}},
		ProfileRepo: &fakeProfiles{byUID: map[string]*domain.UserProfile{}},
		Logger:      zap.NewNop(),
	})
	worker := NewVerificationWorker(&fakeSessionStore{}, accounts, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
