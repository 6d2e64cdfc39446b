package domain

import "time"

// Role represents the privilege level stored for an identity.
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// User is the domain model for identities placing orders.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the stored role grants privileged access.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
