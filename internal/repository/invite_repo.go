package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/database"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
)

// InviteRepository handles database operations for invite codes
type InviteRepository struct {
	db *database.DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *database.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// ReplaceCode installs a fresh code for the group, superseding any
// previous one. The invite_codes table holds one row per group, so the
// upsert is a single atomic statement: last committed mint wins.
// Returns ErrDuplicateCode when the code string collides with a stored
// code of another group (possibly a stale expired row).
func (r *InviteRepository) ReplaceCode(groupID, code string, createdAt, expiresAt time.Time) error {
	_, err := r.db.Exec(r.db.Dialect.UpsertInviteCodeQuery(), groupID, code, createdAt, expiresAt)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to replace invite code: %w", err)
	}
	return nil
}

// GetCode retrieves the group's stored code, or nil if none was ever
// minted. Callers decide liveness via the model's expiry predicate.
func (r *InviteRepository) GetCode(groupID string) (*models.InviteCode, error) {
	query := "SELECT group_id, code, created_at, expires_at FROM invite_codes WHERE group_id = ?"
	code := &models.InviteCode{}
	err := r.db.QueryRow(query, groupID).Scan(&code.GroupID, &code.Code, &code.CreatedAt, &code.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite code: %w", err)
	}

	return code, nil
}

// Redeem converts a live code into a member-role membership for the
// user. Lookup, liveness check, membership check, and insert execute
// as one serializable transaction: a code superseded or expired before
// commit fails cleanly, and the user_id UNIQUE constraint turns a
// double-tap by the same user into ErrDuplicateMembership rather than
// a second membership.
func (r *InviteRepository) Redeem(userID, code string, now time.Time) (*models.FamilyGroup, error) {
	tx, err := r.db.BeginSerializable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group := &models.FamilyGroup{}
	var expiresAt time.Time
	err = tx.QueryRow(`
		SELECT g.id, g.name, g.created_at, i.expires_at
		FROM invite_codes i
		INNER JOIN family_groups g ON g.id = i.group_id
		WHERE i.code = ?
	`, code).Scan(&group.ID, &group.Name, &group.CreatedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if !expiresAt.After(now) {
		return nil, ErrCodeNotFound
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM memberships WHERE user_id = ?", userID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateMembership
	}

	_, err = tx.Exec("INSERT INTO memberships (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		group.ID, userID, string(models.RoleMember), now)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return group, nil
}
