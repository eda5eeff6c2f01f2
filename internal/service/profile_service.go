package service

import (
	"fmt"
	"strings"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

// ProfileService handles display-name profiles
type ProfileService struct {
	profileRepo *repository.ProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// GetProfile returns the user's profile. A user who never set one gets
// a profile carrying the anonymized placeholder name.
func (s *ProfileService) GetProfile(userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return &models.Profile{
			UserID:      userID,
			DisplayName: anonymousName(userID),
		}, nil
	}
	return profile, nil
}

// UpdateProfile sets the user's display name
func (s *ProfileService) UpdateProfile(userID, displayName string) (*models.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}

	if err := s.profileRepo.Upsert(userID, displayName); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	profile, err := s.profileRepo.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}
