package security

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Verify() = %q, want %q", userID, "user-123")
	}
}

func TestTokenVerifyRejections(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		if _, err := issuer.Verify("not-a-token"); err == nil {
			t.Error("Verify() should reject a malformed token")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other-secret", time.Hour)
		token, err := other.Issue("user-123")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := issuer.Verify(token); err == nil {
			t.Error("Verify() should reject a token signed with a different secret")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenIssuer("test-secret", -time.Hour)
		token, err := expired.Issue("user-123")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if _, err := issuer.Verify(token); err == nil {
			t.Error("Verify() should reject an expired token")
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword() should accept the original password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}
