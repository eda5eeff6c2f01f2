package repository

import "errors"

// Sentinel errors surfaced by repositories when a store constraint or
// in-transaction check rejects a write. Services translate these into
// their user-facing taxonomy.
var (
	// ErrDuplicateMembership means the user already holds a membership
	// row; raised by the in-transaction check or by the user_id UNIQUE
	// constraint acting as the final backstop.
	ErrDuplicateMembership = errors.New("user already belongs to a group")

	// ErrMembershipNotFound means the user holds no membership row
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrOwnerHasMembers means the owner tried to leave while other
	// members remain in the group
	ErrOwnerHasMembers = errors.New("owner cannot leave while members remain")

	// ErrCodeNotFound means no live invite code matched
	ErrCodeNotFound = errors.New("invite code not found or expired")

	// ErrDuplicateCode means a freshly generated code collided with a
	// stored one (possibly a stale expired row); callers regenerate.
	ErrDuplicateCode = errors.New("invite code already in use")

	// ErrDuplicateEmail means the email address is already registered
	ErrDuplicateEmail = errors.New("email already registered")
)
