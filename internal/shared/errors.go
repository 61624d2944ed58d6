package shared

import "errors"

var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("already exists")
	// ErrForbidden indicates the caller is authenticated but policy denies the action.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates no identity could be established for the request.
	ErrUnauthorized = errors.New("identity not established")
	// ErrValidation indicates a malformed or incomplete request payload.
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable indicates the repository did not respond within bounds.
	ErrUnavailable = errors.New("repository unavailable")
)
