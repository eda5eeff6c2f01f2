package models

import "time"

// User is an authenticated account. The sharing subsystem only ever
// sees the opaque ID; everything else belongs to the identity layer.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
}

// Profile holds the user-facing display name shown on rosters and
// shared summaries. Optional: a user without a profile renders as an
// anonymized placeholder.
type Profile struct {
	UserID      string
	DisplayName string
	UpdatedAt   time.Time
}
