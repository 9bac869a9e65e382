package config

import "errors"

var (
	// ErrMissingBaseURL indicates api.base_url is empty.
	ErrMissingBaseURL = errors.New("config: api.base_url is required")

	// ErrInvalidDuration indicates a duration that must be positive is not.
	ErrInvalidDuration = errors.New("config: duration must be positive")

	// ErrInvalidValue indicates an out-of-range numeric setting.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrUnknownBackend indicates an unsupported storage backend.
	ErrUnknownBackend = errors.New("config: unknown storage backend")

	// ErrMissingEnv indicates ${VAR} referenced an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")
)
