package domain

import "time"

// Role represents the user's permission level.
type Role string

const (
	// RoleAdmin manages the catalog and sees every user's loans.
	RoleAdmin Role = "admin"
	// RoleStudent borrows, reserves and receives recommendations.
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User is an account that can log in. Username is the identity threaded
// through every inventory operation.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy without the password hash, safe for API output.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// ActiveUsers maps a logged-in username to the time of login.
type ActiveUsers map[string]time.Time
