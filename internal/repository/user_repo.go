package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/database"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user account
func (r *UserRepository) CreateUser(email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}

	query := "INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.Exec(query, user.ID, user.Email, user.PasswordHash, now)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID, or nil if not found
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	return r.getUser("SELECT id, email, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at FROM users WHERE id = ?", id)
}

// GetUserByEmail retrieves a user by email, or nil if not found
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.getUser("SELECT id, email, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at FROM users WHERE email = ?", email)
}

// GetUserByOAuth retrieves a user by linked OAuth identity, or nil if not found
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	return r.getUser("SELECT id, email, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at FROM users WHERE oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

// LinkOAuthProvider attaches an OAuth identity to an existing account
func (r *UserRepository) LinkOAuthProvider(userID, provider, subject string) error {
	query := "UPDATE users SET oauth_provider = ?, oauth_subject = ? WHERE id = ?"
	_, err := r.db.Exec(query, provider, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

func (r *UserRepository) getUser(query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
