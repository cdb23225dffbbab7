package access

import (
	"strings"

	"github.com/spec-kit/binwatch/internal/domain"
)

// Well-known navigation targets used by decisions.
const (
	HomePath       = "/"
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
	DashboardPath  = "/admin/dashboard"
	adminNamespace = "/admin"
)

// DecisionKind enumerates authorization outcomes.
type DecisionKind string

const (
	DecisionPending             DecisionKind = "pending"
	DecisionRedirectToLogin     DecisionKind = "redirect_to_login"
	DecisionRequireVerification DecisionKind = "require_verification"
	DecisionRedirectHome        DecisionKind = "redirect_home"
	DecisionRedirectToDashboard DecisionKind = "redirect_to_dashboard"
	DecisionAllow               DecisionKind = "allow"
)

// Decision is the outcome of an authorization check. RedirectPath is set for
// the redirect kinds.
type Decision struct {
	Kind         DecisionKind
	RedirectPath string
}

// Request describes the screen being requested and its access requirements.
type Request struct {
	Path                      string
	RequiresEmailVerification bool
	RequiresAdmin             bool
	RequiresSuperAdmin        bool
}

// State is the synchronized auth state the decision consumes. Loading marks
// session resolution still in flight; a nil Profile with a live Session marks
// profile sync outstanding or failed.
type State struct {
	Session *domain.Session
	Profile *domain.UserProfile
	Loading bool
}

// Authorize is the single source of truth for screen access. The checks run
// in strict order; the order encodes precedence.
func Authorize(req Request, st State) Decision {
	if st.Loading {
		return Decision{Kind: DecisionPending}
	}

	if st.Session == nil {
		// Routing policy, not a security boundary: admin screens bounce to
		// the admin login, everything else to the general login.
		target := LoginPath
		if strings.HasPrefix(req.Path, adminNamespace) {
			target = AdminLoginPath
		}
		return Decision{Kind: DecisionRedirectToLogin, RedirectPath: target}
	}

	if req.RequiresEmailVerification && !st.Session.EmailVerified {
		// Interstitial, not a redirect: the user needs UI to resend or recheck.
		return Decision{Kind: DecisionRequireVerification}
	}

	if st.Profile == nil {
		// Session exists but profile resolution is outstanding.
		return Decision{Kind: DecisionPending}
	}

	if req.RequiresAdmin && !st.Profile.Role.IsAdmin() {
		return Decision{Kind: DecisionRedirectHome, RedirectPath: HomePath}
	}

	if req.RequiresSuperAdmin && st.Profile.Role != domain.RoleSuperAdmin {
		// Demote rather than deny: the caller is already a valid admin.
		return Decision{Kind: DecisionRedirectToDashboard, RedirectPath: DashboardPath}
	}

	return Decision{Kind: DecisionAllow}
}
