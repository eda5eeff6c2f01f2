package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/security"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo     *repository.UserRepository
	profileRepo  *repository.ProfileRepository
	tokenIssuer  *security.TokenIssuer
	emailService *EmailService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, tokenIssuer *security.TokenIssuer, emailService *EmailService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		tokenIssuer:  tokenIssuer,
		emailService: emailService,
	}
}

// Register creates a new user account and returns a signed token
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	if displayName = strings.TrimSpace(displayName); displayName != "" {
		if err := s.profileRepo.Upsert(user.ID, displayName); err != nil {
			// Account exists; the profile can be set again later
			log.Printf("Warning: failed to create profile for user %s: %v", user.ID, err)
		}
	}

	if err := s.emailService.SendWelcomeEmail(ctx, user.Email); err != nil {
		log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
	}

	token, err := s.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a signed token
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// OAuthLogin signs in (or signs up) a user via an external identity
// provider. An existing account with the same email gets the identity
// linked rather than duplicated.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, displayName string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up oauth identity: %w", err)
	}

	if user == nil {
		user, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, "", fmt.Errorf("failed to get user: %w", err)
		}

		if user == nil {
			// OAuth-only accounts carry no usable password hash
			user, err = s.userRepo.CreateUser(email, "")
			if err != nil {
				return nil, "", fmt.Errorf("failed to create user: %w", err)
			}
			if displayName = strings.TrimSpace(displayName); displayName != "" {
				if err := s.profileRepo.Upsert(user.ID, displayName); err != nil {
					log.Printf("Warning: failed to create profile for user %s: %v", user.ID, err)
				}
			}
			if err := s.emailService.SendWelcomeEmail(ctx, user.Email); err != nil {
				log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
			}
		}

		if err := s.userRepo.LinkOAuthProvider(user.ID, provider, subject); err != nil {
			return nil, "", fmt.Errorf("failed to link oauth identity: %w", err)
		}
	}

	token, err := s.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// GetUser retrieves a user by ID, or nil if not found
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(userID)
}
