package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/database"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
)

// SummaryRepository handles database operations for stored summary records
type SummaryRepository struct {
	db *database.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *database.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// visibleClause matches records the user may read: their own, plus
// non-private records of current groupmates. Evaluated against live
// membership rows on every read, so leaving a group immediately cuts
// both directions of visibility.
const visibleClause = `
	(s.user_id = ? OR (s.is_private = ? AND s.user_id IN (
		SELECT m2.user_id FROM memberships m1
		INNER JOIN memberships m2 ON m2.group_id = m1.group_id
		WHERE m1.user_id = ?
	)))
`

// Create stores a new summary record
func (r *SummaryRepository) Create(userID, title, content, language string, isPrivate bool) (*models.Summary, error) {
	now := time.Now().UTC()
	summary := &models.Summary{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Language:  language,
		IsPrivate: isPrivate,
		CreatedAt: now,
	}

	query := "INSERT INTO summaries (id, user_id, title, content, language, is_private, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, summary.ID, summary.UserID, summary.Title, summary.Content,
		summary.Language, summary.IsPrivate, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}

	return summary, nil
}

// ListVisible retrieves all records visible to the user, newest first,
// enriched with author display names
func (r *SummaryRepository) ListVisible(userID string) ([]models.Summary, error) {
	query := `
		SELECT s.id, s.user_id, s.title, s.content, s.language, s.is_private, s.created_at,
		       COALESCE(p.display_name, '')
		FROM summaries s
		LEFT JOIN profiles p ON p.user_id = s.user_id
		WHERE ` + visibleClause + `
		ORDER BY s.created_at DESC
	`
	rows, err := r.db.Query(query, userID, false, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.Summary
	for rows.Next() {
		var s models.Summary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Content, &s.Language,
			&s.IsPrivate, &s.CreatedAt, &s.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// GetVisible retrieves a single record if the user may read it, or nil
func (r *SummaryRepository) GetVisible(id, userID string) (*models.Summary, error) {
	query := `
		SELECT s.id, s.user_id, s.title, s.content, s.language, s.is_private, s.created_at,
		       COALESCE(p.display_name, '')
		FROM summaries s
		LEFT JOIN profiles p ON p.user_id = s.user_id
		WHERE s.id = ? AND ` + visibleClause

	s := &models.Summary{}
	err := r.db.QueryRow(query, id, userID, false, userID).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Content, &s.Language,
		&s.IsPrivate, &s.CreatedAt, &s.DisplayName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return s, nil
}

// SetPrivacy updates a record's privacy flag. Only the record's author
// may change it; returns false when no owned record matched.
func (r *SummaryRepository) SetPrivacy(id, userID string, isPrivate bool) (bool, error) {
	result, err := r.db.Exec("UPDATE summaries SET is_private = ? WHERE id = ? AND user_id = ?",
		isPrivate, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update summary privacy: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check updated rows: %w", err)
	}

	return affected > 0, nil
}
