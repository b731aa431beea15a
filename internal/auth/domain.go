package auth

import (
	"time"

	"github.com/docshield/docshield/internal/authz"
)

// User represents an authenticated user account. The role is set at
// creation (standard by default) and can only change through seeding or
// direct administrator action; no endpoint escalates it.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         authz.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the authorization identity for this account.
func (u *User) Principal() authz.Principal {
	return authz.Principal{ID: u.ID, Role: u.Role}
}
