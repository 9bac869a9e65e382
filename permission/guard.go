package permission

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonwraymond/gamenetauth/auth"
)

// Source supplies the grants of the current caller.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - ok is false when there is no authenticated session.
type Source interface {
	Permissions(ctx context.Context) (set Set, ok bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Set, bool)

// Permissions implements Source.
func (f SourceFunc) Permissions(ctx context.Context) (Set, bool) {
	return f(ctx)
}

// ContextSource reads the credential attached with auth.WithCredential.
var ContextSource Source = SourceFunc(func(ctx context.Context) (Set, bool) {
	cred := auth.CredentialFromContext(ctx)
	if cred == nil || cred.Token == "" {
		return Set{}, false
	}
	return Resolve(cred.UserType, cred.Permissions), true
})

// DeniedError reports a missing grant.
type DeniedError struct {
	Resource string
	Action   string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission: access denied: resource=%q action=%q", e.Resource, e.Action)
}

// Is matches auth.ErrForbidden.
func (e *DeniedError) Is(target error) bool {
	return target == auth.ErrForbidden
}

// Check returns nil when set can access resource/action, or a *DeniedError.
func Check(set Set, resource, action string) error {
	if set.CanAccess(resource, action) {
		return nil
	}
	return &DeniedError{Resource: resource, Action: action}
}

// RequirePermission admits requests whose caller holds perm exactly.
// It answers 401 without a session and 403 without the grant.
func RequirePermission(src Source, perm string) func(http.Handler) http.Handler {
	return guard(src, func(set Set) bool { return set.Has(perm) })
}

// RequireResource admits requests whose caller can access resource/action,
// honoring the resource:* wildcard.
func RequireResource(src Source, resource, action string) func(http.Handler) http.Handler {
	return guard(src, func(set Set) bool { return set.CanAccess(resource, action) })
}

func guard(src Source, allow func(Set) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set, ok := src.Permissions(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !allow(set) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
