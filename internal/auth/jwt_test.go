package auth_test

import (
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	raw, err := m.GenerateSessionToken("u1", "a@example.com", true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifySessionToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "u1" || claims.Email != "a@example.com" || !claims.IsAdmin {
		t.Fatalf("claims: %+v", claims)
	}
	if claims.JTI == "" {
		t.Fatal("expected a jti")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	raw, err := issuer.GenerateSessionToken("u1", "a@example.com", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.VerifySessionToken(raw); err == nil {
		t.Fatal("expected verification failure across secrets")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	raw, err := m.GenerateSessionToken("u1", "a@example.com", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.VerifySessionToken(raw); err == nil {
		t.Fatal("expected expiry failure")
	}
}
