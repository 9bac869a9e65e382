package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
)

// Sentinel errors for the session controller.
var (
	ErrMissingAPI   = errors.New("session: API client is required")
	ErrMissingStore = errors.New("session: credential store is required")

	// ErrSessionInvalid wraps the reason a stored session was rejected at
	// bootstrap.
	ErrSessionInvalid = errors.New("session: stored session rejected")
)

// LockoutError is returned by Login while the attempt limiter blocks.
type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("session: too many failed login attempts, try again in %s",
		e.Remaining.Round(time.Second))
}

// Is matches auth.ErrLockedOut.
func (e *LockoutError) Is(target error) bool {
	return target == auth.ErrLockedOut
}

// classify converts a remote failure into the generic error shown to users.
// Cancellation passes through unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, apiclient.ErrClient):
		return auth.ErrInvalidCredentials
	case apiclient.IsTransport(err):
		return auth.ErrNetwork
	default:
		return auth.ErrServiceUnavailable
	}
}
