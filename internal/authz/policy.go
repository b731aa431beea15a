// Package authz contains the ownership decision rule shared by every
// document gateway. The rule is deliberately minimal: owners may access
// their own resources, administrators may access anything, everyone else
// is denied. Keeping it a pure function makes the decision table
// exhaustively testable.
package authz

// Role is the closed set of principal roles.
type Role string

const (
	// RoleStandard is the default role assigned at registration.
	RoleStandard Role = "standard"
	// RoleAdministrator may access resources regardless of ownership.
	RoleAdministrator Role = "administrator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdministrator
}

// ParseRole maps a stored role string onto the closed enumeration.
// Unknown values degrade to RoleStandard so a corrupted row can never
// grant elevated access.
func ParseRole(s string) Role {
	if Role(s) == RoleAdministrator {
		return RoleAdministrator
	}
	return RoleStandard
}

// Principal identifies the authenticated actor a request runs on behalf of.
type Principal struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdministrator
}

// Decision is the outcome of an access check.
type Decision int

const (
	// Deny is the zero value so an uninitialised decision never allows.
	Deny Decision = iota
	Allow
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Decide evaluates whether requester may act on a resource owned by
// ownerID. Allow iff the requester owns the resource or holds the
// administrator role. The decision depends on nothing else and is
// recomputed on every request; results must never be cached across
// requests because ownership and role can change between them.
func Decide(ownerID, requesterID int64, role Role) Decision {
	if ownerID == requesterID {
		return Allow
	}
	if role == RoleAdministrator {
		return Allow
	}
	return Deny
}
