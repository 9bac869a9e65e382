package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/gamenetauth/resilience"
)

// Sentinel errors for API calls.
var (
	ErrInvalidBaseURL  = errors.New("apiclient: invalid base URL")
	ErrInvalidResponse = errors.New("apiclient: invalid response")

	// ErrNetwork wraps transport failures (DNS, refused connection, reset).
	ErrNetwork = errors.New("apiclient: network error")

	// Status classes matched by *StatusError.
	ErrUnauthorized   = errors.New("apiclient: unauthorized")
	ErrRequestTimeout = errors.New("apiclient: request timeout")
	ErrRateLimited    = errors.New("apiclient: rate limited")
	ErrClient         = errors.New("apiclient: request rejected")
	ErrServer         = errors.New("apiclient: server error")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("apiclient: status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is maps the status code onto the sentinel classes.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRequestTimeout:
		return e.StatusCode == http.StatusRequestTimeout
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrServer:
		return e.StatusCode >= 500
	case ErrClient:
		return e.StatusCode >= 400 && e.StatusCode < 500 &&
			e.StatusCode != http.StatusUnauthorized &&
			e.StatusCode != http.StatusForbidden &&
			e.StatusCode != http.StatusRequestTimeout &&
			e.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return errors.Is(se, ErrRequestTimeout) || errors.Is(se, ErrRateLimited) || errors.Is(se, ErrServer)
	}
	return errors.Is(err, ErrNetwork) || errors.Is(err, resilience.ErrTimeout)
}

// IsTransport reports whether err never reached a server response.
func IsTransport(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, resilience.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
