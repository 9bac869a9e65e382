package auth

import "errors"

// Sentinel errors surfaced to callers of the session layer.
//
// The messages are deliberately generic: a failed login never reveals
// whether the account exists.
var (
	// Input errors
	ErrMissingCredentials = errors.New("auth: email and password are required")

	// Authentication errors
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrLockedOut          = errors.New("auth: too many failed login attempts")
	ErrNotAuthenticated   = errors.New("auth: not authenticated")
	ErrSessionExpired     = errors.New("auth: session expired")

	// Transport errors
	ErrNetwork            = errors.New("auth: network error, check your connection and try again")
	ErrServiceUnavailable = errors.New("auth: service unavailable, try again later")

	// Token errors
	ErrTokenMalformed = errors.New("auth: token malformed")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")
)
