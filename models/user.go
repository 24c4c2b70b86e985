package models

import "time"

// Role is the closed set of access levels. Stored as a string for JSON
// compatibility, but every checkpoint must go through IsValid/switch rather
// than comparing raw strings.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is a registry entry. The registry is stored as a single JSON array
// under one key and linear-scanned by email.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash,omitempty"` // bcrypt, never the plaintext password
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
}

// Public returns a copy safe to hand to API responses.
func (u *User) Public() User {
	copied := *u
	copied.PasswordHash = ""
	return copied
}

// Session asserts which user is currently authenticated. Derived from a User
// at login and persisted independently, so it can go stale relative to the
// registry; admin role changes rewrite live sessions explicitly.
type Session struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	IsAuthenticated bool      `json:"is_authenticated"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Expired reports whether the session lifetime has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
