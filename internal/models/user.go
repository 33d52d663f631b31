package models

import "time"

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Grants reports whether a holder of r may use an endpoint gated on required.
// Admin grants everything.
func (r Role) Grants(required Role) bool {
	return r == required || r == RoleAdmin
}

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose this to the client
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
