package auth

import (
	"testing"
	"time"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("user-1", "a@example.com", "User")

	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}

	if claims.Email != "a@example.com" {
		t.Errorf("Email = %q, want a@example.com", claims.Email)
	}

	if claims.Role != "User" {
		t.Errorf("Role = %q, want User", claims.Role)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateAccessToken("user-1", "a@example.com", "User")

	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	_, err = m.VerifyAccessToken(token)

	if err == nil {
		t.Fatal("expected an error for an expired token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.GenerateAccessToken("user-1", "a@example.com", "User")

	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	_, err = verifier.VerifyAccessToken(token)

	if err == nil {
		t.Fatal("expected an error for a token signed with another key")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.VerifyAccessToken("not.a.token")

	if err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}
