package models

import "time"

// Favorite marks a file as favorited by a user within an organization.
// At most one exists per (UserID, OrgID, FileID).
type Favorite struct {
	ID        string
	UserID    string
	OrgID     string
	FileID    string
	CreatedAt time.Time
}
