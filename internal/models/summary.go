package models

import "time"

// Summary is a stored medical summary record. Generation happens in an
// external service; this subsystem only stores, lists, and shares.
type Summary struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Language  string
	IsPrivate bool
	CreatedAt time.Time

	// DisplayName is populated from the author's profile on reads,
	// falling back to an anonymized placeholder.
	DisplayName string
}
