package access

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/binwatch/internal/service"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

const stateKey = "session_state"

// Middleware resolves bearer tokens through the synchronizer and enforces
// route policies via the Authorize decision function.
type Middleware struct {
	accounts *service.AccountService
}

// NewMiddleware constructs middleware.
func NewMiddleware(accounts *service.AccountService) *Middleware {
	return &Middleware{accounts: accounts}
}

// Protect gates a route group with the given policy. Handlers behind it only
// render from the decision's outcome; none of the checks are repeated
// downstream.
func (m *Middleware) Protect(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := m.accounts.Resolve(c.UserContext(), bearerToken(c))
		if err != nil {
			return err
		}

		decision := Authorize(RequestFor(c.Path(), policy), State{
			Session: state.Session,
			Profile: state.Profile,
		})

		switch decision.Kind {
		case DecisionAllow:
			c.Locals(stateKey, state)
			return c.Next()
		case DecisionPending:
			return apperrors.NewDomainError("PENDING",
				"session state is still resolving, retry shortly",
				http.StatusServiceUnavailable, nil)
		case DecisionRedirectToLogin:
			return apperrors.NewDomainError("UNAUTHORIZED",
				"sign in to continue",
				http.StatusUnauthorized,
				map[string]any{"redirect": decision.RedirectPath})
		case DecisionRequireVerification:
			return apperrors.NewDomainError("EMAIL_NOT_VERIFIED",
				"verify your email to access this page; resend via /auth/verify/resend or recheck via /auth/verify/check",
				http.StatusForbidden, nil)
		case DecisionRedirectHome:
			return apperrors.NewDomainError("FORBIDDEN",
				"admin access required",
				http.StatusForbidden,
				map[string]any{"redirect": decision.RedirectPath})
		case DecisionRedirectToDashboard:
			return apperrors.NewDomainError("FORBIDDEN",
				"super-admin access required",
				http.StatusForbidden,
				map[string]any{"redirect": decision.RedirectPath})
		default:
			return apperrors.NewForbidden("access denied")
		}
	}
}

// StateFromContext retrieves the synchronized state placed by Protect.
func StateFromContext(c *fiber.Ctx) (*service.SessionState, bool) {
	val := c.Locals(stateKey)
	if val == nil {
		return nil, false
	}
	state, ok := val.(*service.SessionState)
	return state, ok
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
