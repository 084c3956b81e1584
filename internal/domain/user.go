package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the domain model for customer and admin accounts.
// Accounts are never hard-deleted; deactivation records who disabled them and when.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
	DeactivatedBy *string
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
