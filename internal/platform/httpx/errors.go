package httpx

import (
	"errors"
	"net/http"

	"github.com/wardenhq/warden/internal/shared"
)

// RespondError maps the shared error taxonomy onto HTTP statuses. Every
// branch still produces the uniform success/message envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrUnavailable):
		Fail(w, http.StatusServiceUnavailable, "Repository unavailable")
	default:
		Fail(w, http.StatusInternalServerError, "Internal error")
	}
}
