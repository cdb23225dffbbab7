package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/auth"
	"github.com/spec-kit/binwatch/internal/config"
	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/repository"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// fakeIdentity is an in-memory credential service. The verified map is the
// authoritative flag; sessions cache it until Reload.
type fakeIdentity struct {
	passwords     map[string]string
	uidByEmail    map[string]string
	verified      map[string]bool
	sessions      map[string]*domain.Session
	tokens        map[string]string
	registerCalls int
	sendCalls     int
	sendErr       error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		passwords:  map[string]string{},
		uidByEmail: map[string]string{},
		verified:   map[string]bool{},
		sessions:   map[string]*domain.Session{},
		tokens:     map[string]string{},
	}
}

func (f *fakeIdentity) addAccount(email, password string, verified bool) string {
	uid := "uid-" + email
	f.passwords[email] = password
	f.uidByEmail[email] = uid
	f.verified[uid] = verified
	return uid
}

func (f *fakeIdentity) open(email string) *domain.Session {
	uid := f.uidByEmail[email]
	session := &domain.Session{
		ID:            "sess-" + uid,
		UID:           uid,
		Email:         email,
		EmailVerified: f.verified[uid],
	}
	f.sessions[session.ID] = session
	return session
}

func (f *fakeIdentity) Register(ctx context.Context, email, password string) (*domain.Session, error) {
	f.registerCalls++
	if _, exists := f.uidByEmail[email]; exists {
		return nil, auth.ErrEmailTaken
	}
	f.addAccount(email, password, false)
	return f.open(email), nil
}

func (f *fakeIdentity) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	stored, ok := f.passwords[email]
	if !ok || stored != password {
		return nil, auth.ErrInvalidCredentials
	}
	return f.open(email), nil
}

func (f *fakeIdentity) UpdateDisplayName(ctx context.Context, session *domain.Session, displayName string) error {
	session.DisplayName = displayName
	return nil
}

func (f *fakeIdentity) SendVerificationEmail(ctx context.Context, session *domain.Session) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sendCalls++
	return nil
}

func (f *fakeIdentity) Reload(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	session.EmailVerified = f.verified[session.UID]
	return session, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context, session *domain.Session) error {
	delete(f.sessions, session.ID)
	return nil
}

func (f *fakeIdentity) SessionFromToken(ctx context.Context, token string) (*domain.Session, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, nil
	}
	return f.sessions[id], nil
}

func (f *fakeIdentity) IssueToken(session *domain.Session) (string, time.Time, error) {
	token := "token-" + session.ID
	f.tokens[token] = session.ID
	return token, time.Now().Add(time.Hour), nil
}

func (f *fakeIdentity) VerifyEmail(ctx context.Context, token string) error {
	return nil
}

// fakeProfileRepo is an in-memory profile store.
type fakeProfileRepo struct {
	byUID       map[string]*domain.UserProfile
	createErr   error
	writeCalls  int
	createCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUID: map[string]*domain.UserProfile{}}
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *domain.UserProfile) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	copied := *profile
	f.byUID[profile.UID] = &copied
	return nil
}

func (f *fakeProfileRepo) GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	profile, ok := f.byUID[uid]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfileRepo) UpdateEmailVerified(ctx context.Context, uid string, verified bool) error {
	f.writeCalls++
	profile, ok := f.byUID[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.EmailVerified = verified
	return nil
}

func (f *fakeProfileRepo) UpdateRole(ctx context.Context, uid string, role domain.UserRole) error {
	profile, ok := f.byUID[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.Role = role
	return nil
}

func (f *fakeProfileRepo) UpdateRegion(ctx context.Context, uid string, region domain.Region) error {
	profile, ok := f.byUID[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.Region = region
	return nil
}

func (f *fakeProfileRepo) List(ctx context.Context, filter repository.ProfileFilter) ([]domain.UserProfile, error) {
	out := make([]domain.UserProfile, 0, len(f.byUID))
	for _, profile := range f.byUID {
		out = append(out, *profile)
	}
	return out, nil
}

func newAccountService(ids *fakeIdentity, profiles *fakeProfileRepo) *AccountService {
	return NewAccountService(config.AuthConfig{MinPasswordLength: 6}, AccountDependencies{
		Credentials: ids,
		ProfileRepo: profiles,
		Logger:      zap.NewNop(),
	})
}

func TestRegisterValidatesBeforeCredentialCalls(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		password    string
		displayName string
		region      domain.Region
	}{
		{"short password", "a@b.test", "12345", "Ada", "Lagos"},
		{"bad email", "not-an-email", "123456", "Ada", "Lagos"},
		{"empty display name", "a@b.test", "123456", "  ", "Lagos"},
		{"unknown region", "a@b.test", "123456", "Ada", "Atlantis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := newFakeIdentity()
			svc := newAccountService(ids, newFakeProfileRepo())

			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.displayName, tt.region)
			if !apperrors.IsCode(err, "VALIDATION_FAILED") {
				t.Fatalf("err = %v, want VALIDATION_FAILED", err)
			}
			if ids.registerCalls != 0 {
				t.Fatalf("credential service reached %d times, want 0", ids.registerCalls)
			}
		})
	}
}

func TestRegisterCreatesUnverifiedProfile(t *testing.T) {
	ids := newFakeIdentity()
	profiles := newFakeProfileRepo()
	svc := newAccountService(ids, profiles)

	state, err := svc.Register(context.Background(), "ada@b.test", "123456", "Ada", "Lagos")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if state.Profile == nil {
		t.Fatal("profile not returned")
	}
	if state.Profile.EmailVerified {
		t.Fatal("new profile must start unverified")
	}
	if state.Profile.Role != domain.RoleUser {
		t.Fatalf("role = %q, want %q", state.Profile.Role, domain.RoleUser)
	}
	if ids.sendCalls != 1 {
		t.Fatalf("verification emails sent = %d, want 1", ids.sendCalls)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	ids := newFakeIdentity()
	ids.addAccount("taken@b.test", "pw", true)
	svc := newAccountService(ids, newFakeProfileRepo())

	_, err := svc.Register(context.Background(), "taken@b.test", "123456", "Ada", "Lagos")
	if !apperrors.IsCode(err, "REGISTRATION_FAILED") {
		t.Fatalf("err = %v, want REGISTRATION_FAILED", err)
	}
}

func TestRegisterPartialFailureIsDistinct(t *testing.T) {
	ids := newFakeIdentity()
	profiles := newFakeProfileRepo()
	profiles.createErr = errors.New("insert failed")
	svc := newAccountService(ids, profiles)

	_, err := svc.Register(context.Background(), "ada@b.test", "123456", "Ada", "Lagos")
	if !apperrors.IsCode(err, "REGISTRATION_FAILED") {
		t.Fatalf("err = %v, want REGISTRATION_FAILED", err)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Details["stage"] != "profile_creation" {
		t.Fatalf("details = %#v, want stage=profile_creation", err)
	}
	// The credential account exists: retrying the same signup must now fail
	// as taken, not succeed silently.
	if ids.registerCalls != 1 {
		t.Fatalf("registerCalls = %d, want 1", ids.registerCalls)
	}
}

func TestLoginUnverifiedSendsExactlyOneEmail(t *testing.T) {
	ids := newFakeIdentity()
	uid := ids.addAccount("ada@b.test", "123456", false)
	profiles := newFakeProfileRepo()
	profiles.byUID[uid] = &domain.UserProfile{UID: uid, Email: "ada@b.test", Role: domain.RoleUser, Region: "Lagos"}
	svc := newAccountService(ids, profiles)

	_, _, _, err := svc.Login(context.Background(), "ada@b.test", "123456")
	if !apperrors.IsCode(err, "EMAIL_NOT_VERIFIED") {
		t.Fatalf("err = %v, want EMAIL_NOT_VERIFIED", err)
	}
	if ids.sendCalls != 1 {
		t.Fatalf("verification emails sent = %d, want 1", ids.sendCalls)
	}
	if profiles.writeCalls != 0 {
		t.Fatalf("profile writes = %d, want 0 for a denied login", profiles.writeCalls)
	}
}

func TestLoginVerifiedIssuesTokenAndSyncs(t *testing.T) {
	ids := newFakeIdentity()
	uid := ids.addAccount("ada@b.test", "123456", true)
	profiles := newFakeProfileRepo()
	// The mirror is stale: profile still says unverified.
	profiles.byUID[uid] = &domain.UserProfile{UID: uid, Email: "ada@b.test", Role: domain.RoleUser, Region: "Lagos", EmailVerified: false}
	svc := newAccountService(ids, profiles)

	state, token, _, err := svc.Login(context.Background(), "ada@b.test", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("no token issued")
	}
	if !state.Profile.EmailVerified {
		t.Fatal("profile mirror not synced to verified")
	}
	if profiles.writeCalls != 1 {
		t.Fatalf("profile writes = %d, want exactly 1", profiles.writeCalls)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ids := newFakeIdentity()
	ids.addAccount("ada@b.test", "123456", true)
	svc := newAccountService(ids, newFakeProfileRepo())

	_, _, _, err := svc.Login(context.Background(), "ada@b.test", "wrong")
	if !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestCheckEmailVerificationIsIdempotent(t *testing.T) {
	ids := newFakeIdentity()
	uid := ids.addAccount("ada@b.test", "123456", true)
	profiles := newFakeProfileRepo()
	profiles.byUID[uid] = &domain.UserProfile{UID: uid, Email: "ada@b.test", Role: domain.RoleUser, Region: "Lagos", EmailVerified: false}
	svc := newAccountService(ids, profiles)

	session := ids.open("ada@b.test")

	first, err := svc.CheckEmailVerification(context.Background(), session)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if !first.IsVerified || !first.ProfileUpdated {
		t.Fatalf("first check = %+v, want verified and updated", first)
	}

	second, err := svc.CheckEmailVerification(context.Background(), session)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !second.IsVerified || second.ProfileUpdated {
		t.Fatalf("second check = %+v, want verified and no further write", second)
	}
	if profiles.writeCalls != 1 {
		t.Fatalf("profile writes = %d, want exactly 1 across repeated checks", profiles.writeCalls)
	}
}

func TestCheckEmailVerificationNilSession(t *testing.T) {
	svc := newAccountService(newFakeIdentity(), newFakeProfileRepo())

	status, err := svc.CheckEmailVerification(context.Background(), nil)
	if err != nil {
		t.Fatalf("nil session check: %v", err)
	}
	if status.IsVerified || status.ProfileUpdated {
		t.Fatalf("status = %+v, want zero value", status)
	}
}

func TestResolveEmptyAndDeadTokens(t *testing.T) {
	ids := newFakeIdentity()
	svc := newAccountService(ids, newFakeProfileRepo())

	state, err := svc.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("empty token: %v", err)
	}
	if state.Session != nil {
		t.Fatal("empty token must resolve to signed-out state")
	}

	state, err = svc.Resolve(context.Background(), "token-of-deleted-session")
	if err != nil {
		t.Fatalf("dead token: %v", err)
	}
	if state.Session != nil {
		t.Fatal("dead token must resolve to signed-out state")
	}
}

func TestResolveSyncsStaleSessionFlag(t *testing.T) {
	ids := newFakeIdentity()
	uid := ids.addAccount("ada@b.test", "123456", false)
	profiles := newFakeProfileRepo()
	profiles.byUID[uid] = &domain.UserProfile{UID: uid, Email: "ada@b.test", Role: domain.RoleUser, Region: "Lagos", EmailVerified: false}
	svc := newAccountService(ids, profiles)

	session := ids.open("ada@b.test")
	token, _, err := ids.IssueToken(session)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// The user clicks the email link between requests.
	ids.verified[uid] = true

	state, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !state.Session.EmailVerified {
		t.Fatal("session flag not refreshed from the authoritative store")
	}
	if !state.Profile.EmailVerified {
		t.Fatal("profile mirror not synced during resolve")
	}
}

func TestResolveMissingProfile(t *testing.T) {
	ids := newFakeIdentity()
	ids.addAccount("ada@b.test", "123456", true)
	svc := newAccountService(ids, newFakeProfileRepo())

	session := ids.open("ada@b.test")
	token, _, err := ids.IssueToken(session)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	state, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if state.Session == nil {
		t.Fatal("session lost")
	}
	if state.Profile != nil {
		t.Fatal("missing profile must stay nil, never auto-created")
	}
}
