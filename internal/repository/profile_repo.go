package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/database"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
)

// ProfileRepository handles database operations for display-name profiles
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves a user's profile, or nil if they never set one
func (r *ProfileRepository) Get(userID string) (*models.Profile, error) {
	query := "SELECT user_id, display_name, updated_at FROM profiles WHERE user_id = ?"
	profile := &models.Profile{}
	err := r.db.QueryRow(query, userID).Scan(&profile.UserID, &profile.DisplayName, &profile.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// Upsert creates or updates a user's display name
func (r *ProfileRepository) Upsert(userID, displayName string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.Exec("UPDATE profiles SET display_name = ?, updated_at = ? WHERE user_id = ?",
		displayName, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		_, err = tx.Exec("INSERT INTO profiles (user_id, display_name, updated_at) VALUES (?, ?, ?)",
			userID, displayName, now)
		if err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
