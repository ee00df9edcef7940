package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AdminSubjectID is the synthetic subject id carried by assertions issued to the reserved admin.
const AdminSubjectID = "admin"

// User represents a registered account of the feedback board.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subject is the authenticated identity attached to a request.
type Subject struct {
	ID       string
	Username string
	Role     Role
}

func (s Subject) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Owns reports whether the subject is the given owner id. Empty owners are never matched.
func (s Subject) Owns(ownerID string) bool {
	return ownerID != "" && s.ID == ownerID
}
