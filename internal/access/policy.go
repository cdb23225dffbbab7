package access

// Policy is the access requirement attached to a protected route. Public
// routes carry no policy (the middleware is simply not mounted).
type Policy struct {
	RequiresEmailVerification bool
	RequiresAdmin             bool
	RequiresSuperAdmin        bool
}

// The route policies. Screens render purely from the Authorize decision;
// nothing downstream re-implements these checks.
var (
	// SessionOnly requires a signed-in session but tolerates an unverified
	// email (verification screens themselves).
	SessionOnly = Policy{}

	// Verified requires a signed-in, email-verified resident.
	Verified = Policy{RequiresEmailVerification: true}

	// Admin requires a verified admin or super-admin.
	Admin = Policy{RequiresEmailVerification: true, RequiresAdmin: true}

	// SuperAdmin additionally requires the super-admin role.
	SuperAdmin = Policy{RequiresEmailVerification: true, RequiresAdmin: true, RequiresSuperAdmin: true}
)

// RequestFor binds a policy to the concrete path being served.
func RequestFor(path string, policy Policy) Request {
	return Request{
		Path:                      path,
		RequiresEmailVerification: policy.RequiresEmailVerification,
		RequiresAdmin:             policy.RequiresAdmin,
		RequiresSuperAdmin:        policy.RequiresSuperAdmin,
	}
}
