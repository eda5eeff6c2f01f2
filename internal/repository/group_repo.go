package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/database"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
)

// GroupRepository handles database operations for family groups and memberships
type GroupRepository struct {
	db *database.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroupWithOwner creates a group and its owner membership in one
// transaction. The no-existing-membership check runs inside the same
// transaction, and the user_id UNIQUE constraint backstops it, so two
// concurrent creates (or a create racing a join) cannot both commit.
func (r *GroupRepository) CreateGroupWithOwner(name, userID string) (*models.FamilyGroup, error) {
	tx, err := r.db.BeginSerializable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM memberships WHERE user_id = ?", userID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateMembership
	}

	now := time.Now().UTC()
	groupID := uuid.New().String()

	_, err = tx.Exec("INSERT INTO family_groups (id, name, created_at) VALUES (?, ?, ?)",
		groupID, name, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	_, err = tx.Exec("INSERT INTO memberships (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		groupID, userID, string(models.RoleOwner), now)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.FamilyGroup{ID: groupID, Name: name, CreatedAt: now}, nil
}

// GetGroupByID retrieves a group by ID
func (r *GroupRepository) GetGroupByID(groupID string) (*models.FamilyGroup, error) {
	query := "SELECT id, name, created_at FROM family_groups WHERE id = ?"
	group := &models.FamilyGroup{}
	err := r.db.QueryRow(query, groupID).Scan(&group.ID, &group.Name, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// GetMembership retrieves the user's membership row, or nil if none exists
func (r *GroupRepository) GetMembership(userID string) (*models.Membership, error) {
	query := "SELECT group_id, user_id, role, joined_at FROM memberships WHERE user_id = ?"
	m := &models.Membership{}
	var role string
	err := r.db.QueryRow(query, userID).Scan(&m.GroupID, &m.UserID, &role, &m.JoinedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	m.Role = models.Role(role)

	return m, nil
}

// GetRoster retrieves all members of a group with display names from
// profiles, earliest joiner first. Missing profiles yield empty names.
func (r *GroupRepository) GetRoster(groupID string) ([]models.RosterEntry, error) {
	query := `
		SELECT m.user_id, m.role, m.joined_at, COALESCE(p.display_name, '')
		FROM memberships m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.group_id = ?
		ORDER BY m.joined_at ASC
	`
	rows, err := r.db.Query(query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var entries []models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		var role string
		if err := rows.Scan(&entry.UserID, &role, &entry.JoinedAt, &entry.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entry.Role = models.Role(role)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// RemoveMember deletes the user's own membership row. The owner may
// only leave as the last member; the check and the delete share one
// transaction so a concurrent join cannot slip in between.
func (r *GroupRepository) RemoveMember(userID string) error {
	tx, err := r.db.BeginSerializable(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID, role string
	err = tx.QueryRow("SELECT group_id, role FROM memberships WHERE user_id = ?", userID).
		Scan(&groupID, &role)
	if err == sql.ErrNoRows {
		return ErrMembershipNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}

	if models.Role(role) == models.RoleOwner {
		var others int
		err = tx.QueryRow("SELECT COUNT(*) FROM memberships WHERE group_id = ? AND user_id <> ?",
			groupID, userID).Scan(&others)
		if err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		if others > 0 {
			return ErrOwnerHasMembers
		}
	}

	result, err := tx.Exec("DELETE FROM memberships WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrMembershipNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
