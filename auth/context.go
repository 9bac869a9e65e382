package auth

import (
	"context"
)

// Context keys for auth-related values.
type contextKey int

const (
	credentialKey contextKey = iota
)

// WithCredential returns a new context carrying cred.
func WithCredential(ctx context.Context, cred *Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// CredentialFromContext retrieves the credential from the context.
// Returns nil if none is present.
func CredentialFromContext(ctx context.Context) *Credential {
	cred, _ := ctx.Value(credentialKey).(*Credential)
	return cred
}

// UserTypeFromContext returns the role of the credential in ctx, or "".
func UserTypeFromContext(ctx context.Context) UserType {
	cred := CredentialFromContext(ctx)
	if cred == nil {
		return ""
	}
	return cred.UserType
}
