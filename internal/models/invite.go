package models

import "time"

// InviteCode is the single join code of a group. Minting a new code
// replaces the previous one; expiry is a computed predicate on
// ExpiresAt, never an active deletion.
type InviteCode struct {
	GroupID   string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c *InviteCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// SecondsRemaining returns the whole seconds until expiry, zero once expired
func (c *InviteCode) SecondsRemaining() int64 {
	remaining := time.Until(c.ExpiresAt)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining.Seconds())
}
