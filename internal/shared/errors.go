package shared

import "errors"

var (
	// ErrSessionMissing is returned when a request carries no session.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing is returned when no CSRF token was supplied or issued.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch is returned when the supplied token differs.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
