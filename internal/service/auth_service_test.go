package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/security"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

func newAuthEnv(t *testing.T) (*testEnv, *AuthService, *security.TokenIssuer) {
	t.Helper()
	env := newTestEnv(t)

	emailService, err := NewEmailService("", "", "", "http://localhost:3000")
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}

	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	auth := NewAuthService(env.userRepo, env.profileRepo, issuer, emailService)
	return env, auth, issuer
}

func TestRegisterAndLogin(t *testing.T) {
	env, auth, issuer := newAuthEnv(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "Hanako@Example.com", "password123", "花子")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "hanako@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}

	// The returned token authenticates as the new user
	subject, err := issuer.Verify(token)
	if err != nil || subject != user.ID {
		t.Errorf("Verify(token) = (%q, %v), want user ID %q", subject, err, user.ID)
	}

	// Registration created the profile
	profile, err := env.profileRepo.Get(user.ID)
	if err != nil {
		t.Fatalf("Get profile error = %v", err)
	}
	if profile == nil || profile.DisplayName != "花子" {
		t.Errorf("profile = %+v, want display name 花子", profile)
	}

	// Duplicate email, any casing
	if _, _, err := auth.Register(ctx, "HANAKO@example.com", "password123", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailTaken", err)
	}

	// Login round trip
	if _, _, err := auth.Login("hanako@example.com", "password123"); err != nil {
		t.Errorf("Login() error = %v", err)
	}
	if _, _, err := auth.Login("hanako@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := auth.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	_, auth, _ := newAuthEnv(t)
	ctx := context.Background()

	var valErr validation.ValidationError
	if _, _, err := auth.Register(ctx, "not-an-email", "password123", ""); !errors.As(err, &valErr) {
		t.Errorf("Register(bad email) error = %v, want ValidationError", err)
	}
	if _, _, err := auth.Register(ctx, "ok@example.com", "short", ""); !errors.As(err, &valErr) {
		t.Errorf("Register(short password) error = %v, want ValidationError", err)
	}
}

func TestOAuthLogin(t *testing.T) {
	env, auth, _ := newAuthEnv(t)
	ctx := context.Background()

	// First sign-in creates the account
	user, _, err := auth.OAuthLogin(ctx, "google", "sub-123", "taro@example.com", "太郎")
	if err != nil {
		t.Fatalf("OAuthLogin() error = %v", err)
	}

	// Second sign-in finds the same account by identity
	again, _, err := auth.OAuthLogin(ctx, "google", "sub-123", "taro@example.com", "太郎")
	if err != nil {
		t.Fatalf("repeat OAuthLogin() error = %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("repeat sign-in returned user %s, want %s", again.ID, user.ID)
	}

	// A password account with the same email gets linked, not duplicated
	existing, _, err := auth.Register(ctx, "linked@example.com", "password123", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	linked, _, err := auth.OAuthLogin(ctx, "google", "sub-456", "linked@example.com", "")
	if err != nil {
		t.Fatalf("OAuthLogin(existing email) error = %v", err)
	}
	if linked.ID != existing.ID {
		t.Errorf("linked sign-in returned user %s, want existing %s", linked.ID, existing.ID)
	}

	stored, err := env.userRepo.GetUserByOAuth("google", "sub-456")
	if err != nil {
		t.Fatalf("GetUserByOAuth() error = %v", err)
	}
	if stored == nil || stored.ID != existing.ID {
		t.Errorf("oauth identity lookup = %+v, want user %s", stored, existing.ID)
	}

	// OAuth-only accounts have no usable password
	if _, _, err := auth.Login("taro@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() to oauth-only account error = %v, want ErrInvalidCredentials", err)
	}
}
