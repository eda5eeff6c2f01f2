package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

var (
	// ErrSummaryNotFound is returned when a record does not exist or the user may not read it
	ErrSummaryNotFound = errors.New("summary not found")
)

// SummaryService handles stored summary records and their visibility
type SummaryService struct {
	summaryRepo *repository.SummaryRepository
}

// NewSummaryService creates a new summary service
func NewSummaryService(summaryRepo *repository.SummaryRepository) *SummaryService {
	return &SummaryService{summaryRepo: summaryRepo}
}

// CreateSummary stores a new record for the user
func (s *SummaryService) CreateSummary(userID, title, content, language string, isPrivate bool) (*models.Summary, error) {
	title = strings.TrimSpace(title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, validation.ValidationError{Field: "content", Message: "content is required"}
	}
	if language == "" {
		language = "ja"
	}

	summary, err := s.summaryRepo.Create(userID, title, content, language, isPrivate)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}

	return summary, nil
}

// ListSummaries returns all records the user may read, newest first.
// Authors without a display name appear under a short placeholder.
func (s *SummaryService) ListSummaries(userID string) ([]models.Summary, error) {
	summaries, err := s.summaryRepo.ListVisible(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	for i := range summaries {
		if summaries[i].DisplayName == "" {
			summaries[i].DisplayName = anonymousName(summaries[i].UserID)
		}
	}
	return summaries, nil
}

// GetSummary returns one record if the user may read it
func (s *SummaryService) GetSummary(id, userID string) (*models.Summary, error) {
	summary, err := s.summaryRepo.GetVisible(id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	if summary == nil {
		return nil, ErrSummaryNotFound
	}
	if summary.DisplayName == "" {
		summary.DisplayName = anonymousName(summary.UserID)
	}
	return summary, nil
}

// SetPrivacy toggles a record's privacy flag. Only the author may
// change it; anyone else sees not-found, the same as a missing record.
func (s *SummaryService) SetPrivacy(id, userID string, isPrivate bool) error {
	updated, err := s.summaryRepo.SetPrivacy(id, userID, isPrivate)
	if err != nil {
		return fmt.Errorf("failed to set privacy: %w", err)
	}
	if !updated {
		return ErrSummaryNotFound
	}
	return nil
}
