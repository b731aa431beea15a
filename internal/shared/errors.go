package shared

import "errors"

var (
	// ErrNotFound indicates the document does not exist or the requester
	// is not permitted to see it. The two cases are deliberately
	// indistinguishable so callers cannot probe for existence.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing, invalid or expired bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("already exists")
	// ErrValidation indicates a malformed request payload.
	ErrValidation = errors.New("validation failed")
	// ErrPrincipalUnbound indicates a row-filtered query was attempted
	// without a principal bound to the storage session. This is a
	// configuration fault and must fail closed, never fall back to
	// unfiltered visibility.
	ErrPrincipalUnbound = errors.New("storage principal not bound")
)
