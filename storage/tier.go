package storage

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a storage key.
const MaxKeyLength = 256

// Sentinel errors for storage operations.
var (
	ErrInvalidKey = errors.New("storage: key is invalid")
	ErrKeyTooLong = errors.New("storage: key exceeds max length")
	ErrClosed     = errors.New("storage: tier is closed")
)

// Tier is one layer of the credential store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get returns ("", false, nil) on miss; Delete is idempotent.
type Tier interface {
	// Name identifies the tier in logs and health checks.
	Name() string

	// Get retrieves a value.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value without expiry.
	Set(ctx context.Context, key, value string) error

	// Delete removes a value. No error on miss.
	Delete(ctx context.Context, key string) error

	// Close releases the tier's resources.
	Close() error
}

// Pinger is implemented by tiers backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ValidateKey checks if a key is usable by every tier.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
