// Package documents implements the owned-document store and the two
// competing enforcement gateways: an application-level ownership check
// (Service) and a store-enforced row-visibility check (RLSRepository).
// It also keeps the intentionally unchecked fetch path used to
// demonstrate the vulnerability the gateways close.
package documents

import "time"

// Document is an owned record. OwnerID is set from the authenticated
// creator at insert time and never changes afterwards.
type Document struct {
	ID        int64
	Title     string
	Content   string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams carries a validated create payload.
type CreateParams struct {
	Title   string
	Content string
}

// UpdateParams carries a validated update payload. Nil fields are left
// untouched.
type UpdateParams struct {
	Title   *string
	Content *string
}
