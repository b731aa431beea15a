package users

import (
	"time"

	"github.com/docshield/docshield/internal/authz"
)

// User is the public view of an account. It never carries the password
// digest.
type User struct {
	ID        int64
	Username  string
	Email     string
	Role      authz.Role
	IsActive  bool
	CreatedAt time.Time
}
