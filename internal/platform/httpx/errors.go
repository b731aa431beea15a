package httpx

import (
	"errors"
	"net/http"

	"github.com/docshield/docshield/internal/shared"
)

// RespondError maps domain errors to HTTP problem responses. Response
// bodies are fixed per error category: a denied document and an absent
// document produce byte-identical 404 bodies, and configuration faults
// surface as opaque 500s carrying no internal detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Conflict", "already exists")
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
