package domain

import "time"

// Session is the live, provider-issued identity handle for a signed-in actor.
// It is transient: created at sign-in/registration, refreshed by Reload,
// destroyed at sign-out. EmailVerified here is a cached copy of the
// authoritative credential flag and must be refreshed before trust.
type Session struct {
	ID            string
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	IssuedAt      time.Time
	ExpiresAt     time.Time
}
