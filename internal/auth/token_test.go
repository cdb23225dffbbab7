package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken("sess-1", "uid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("token already expired at issue time")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.UID != "uid-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", time.Hour).GenerateToken("sess-1", "uid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.ParseToken("not.a.token"); err == nil {
		t.Fatal("garbage token must not parse")
	}
}
