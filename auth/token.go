package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token timing defaults.
const (
	// DefaultExpiryBuffer is subtracted from a token's lifetime so that a
	// token about to lapse is treated as already expired.
	DefaultExpiryBuffer = 30 * time.Second

	// DefaultRefreshWindow is how close to expiry a token counts as
	// expiring soon.
	DefaultRefreshWindow = 5 * time.Minute

	// DefaultCheckInterval is how often the session re-inspects its token.
	DefaultCheckInterval = 5 * time.Minute
)

// TokenClaims is the part of the token payload the client cares about.
type TokenClaims struct {
	// ExpiresAt is nil when the token carries no exp claim.
	ExpiresAt *time.Time
}

// TokenConfig configures the token lifecycle checks.
type TokenConfig struct {
	// ExpiryBuffer is the safety margin applied by IsExpired.
	// Default: 30s
	ExpiryBuffer time.Duration

	// RefreshWindow is the default window for IsExpiringSoon.
	// Default: 5m
	RefreshWindow time.Duration

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// TokenLifecycle inspects bearer tokens for expiry.
//
// It only reads the payload; it never verifies signatures.
type TokenLifecycle struct {
	config TokenConfig
	parser *jwt.Parser
}

// NewTokenLifecycle creates a token lifecycle inspector.
func NewTokenLifecycle(config TokenConfig) *TokenLifecycle {
	// Apply defaults
	if config.ExpiryBuffer <= 0 {
		config.ExpiryBuffer = DefaultExpiryBuffer
	}
	if config.RefreshWindow <= 0 {
		config.RefreshWindow = DefaultRefreshWindow
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &TokenLifecycle{
		config: config,
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
	}
}

// IsValidFormat reports whether token has exactly three dot-separated segments.
func (l *TokenLifecycle) IsValidFormat(token string) bool {
	return strings.Count(token, ".") == 2
}

// Decode reads the payload segment of token.
func (l *TokenLifecycle) Decode(token string) (TokenClaims, error) {
	if !l.IsValidFormat(token) {
		return TokenClaims{}, ErrTokenMalformed
	}

	segment := strings.Split(token, ".")[1]
	payload, err := l.parser.DecodeSegment(segment)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if exp == nil {
		return TokenClaims{}, nil
	}

	at := exp.Time
	return TokenClaims{ExpiresAt: &at}, nil
}

// IsExpired reports whether token must no longer be used.
//
// Unreadable tokens are expired. Tokens without an exp claim never expire.
// Otherwise the token is expired once exp <= now + ExpiryBuffer.
func (l *TokenLifecycle) IsExpired(token string) bool {
	claims, err := l.Decode(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	deadline := l.config.Now().Add(l.config.ExpiryBuffer)
	return !claims.ExpiresAt.After(deadline)
}

// ExpiresAt returns the absolute expiry of token, if it has one.
func (l *TokenLifecycle) ExpiresAt(token string) (time.Time, bool) {
	claims, err := l.Decode(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return *claims.ExpiresAt, true
}

// IsExpiringSoon reports whether 0 < expiresAt - now <= window.
// A non-positive window uses the configured RefreshWindow.
func (l *TokenLifecycle) IsExpiringSoon(token string, window time.Duration) bool {
	if window <= 0 {
		window = l.config.RefreshWindow
	}
	expiresAt, ok := l.ExpiresAt(token)
	if !ok {
		return false
	}
	remaining := expiresAt.Sub(l.config.Now())
	return remaining > 0 && remaining <= window
}

// Remaining returns the validity left on token; zero when expired,
// unreadable or non-expiring.
func (l *TokenLifecycle) Remaining(token string) time.Duration {
	expiresAt, ok := l.ExpiresAt(token)
	if !ok {
		return 0
	}
	if d := expiresAt.Sub(l.config.Now()); d > 0 {
		return d
	}
	return 0
}

// Config returns the lifecycle configuration.
func (l *TokenLifecycle) Config() TokenConfig {
	return l.config
}
