package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// Public strips the password hash; everything past the credential store sees this shape.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// NormalizeEmail is the canonical form used for uniqueness and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
