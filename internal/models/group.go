package models

import "time"

// Role is the closed set of membership roles. Exactly one owner exists
// per group, assigned at creation and never reassigned.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleMember:
		return true
	}
	return false
}

// FamilyGroup is a sharing unit created by one founding user
type FamilyGroup struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Membership binds one user to one group with a role. The store
// enforces at most one membership row per user at any time.
type Membership struct {
	GroupID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

// RosterEntry is a membership enriched with a display name for rendering
type RosterEntry struct {
	UserID      string
	Role        Role
	JoinedAt    time.Time
	DisplayName string
}

// GroupState is what the client renders on the family screen: the
// caller's group, their role in it, and the full roster.
type GroupState struct {
	Group   FamilyGroup
	Role    Role
	Members []RosterEntry
}
