package session

import (
	"context"
	"strconv"

	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/observe"
	"github.com/jonwraymond/gamenetauth/permission"
	"github.com/jonwraymond/gamenetauth/storage"
)

// persist writes cred to the tier chosen at login. Stale keys from a
// previous credential are removed first.
func (c *Controller) persist(ctx context.Context, cred *auth.Credential) {
	durable := cred.IssuedVia == auth.PersistDurable

	c.store.Remove(ctx, storage.CredentialKeys...)
	c.store.Set(ctx, storage.KeyToken, cred.Token, durable)
	if err := c.store.SetJSON(ctx, storage.KeyUser, cred.User, durable); err != nil {
		c.logger.Warn(ctx, "failed to encode user profile", observe.F("error", err.Error()))
	}
	c.store.Set(ctx, storage.KeyUserType, string(cred.UserType), durable)
	if err := c.store.SetJSON(ctx, storage.KeyPermissions, cred.Permissions, durable); err != nil {
		c.logger.Warn(ctx, "failed to encode permissions", observe.F("error", err.Error()))
	}
	c.store.Set(ctx, storage.KeyRememberMe, strconv.FormatBool(durable), durable)
}

// persistUser rewrites only the cached profile.
func (c *Controller) persistUser(ctx context.Context, user *auth.User, via auth.Persistence) {
	if err := c.store.SetJSON(ctx, storage.KeyUser, user, via == auth.PersistDurable); err != nil {
		c.logger.Warn(ctx, "failed to encode user profile", observe.F("error", err.Error()))
	}
}

// clearStored removes the persisted credential. Login attempts survive.
func (c *Controller) clearStored(ctx context.Context) {
	c.store.Remove(ctx, storage.CredentialKeys...)
}

// storedSession is the credential as read back from storage.
type storedSession struct {
	token       string
	user        *auth.User
	userType    auth.UserType
	permissions []string
	via         auth.Persistence
}

// loadStored reads the persisted credential. ok is false when there is
// no token.
func (c *Controller) loadStored(ctx context.Context) (storedSession, bool, error) {
	token, ok := c.store.Get(ctx, storage.KeyToken)
	if !ok || token == "" {
		return storedSession{}, false, nil
	}

	var user auth.User
	found, err := c.store.GetJSON(ctx, storage.KeyUser, &user)
	if err != nil {
		return storedSession{}, true, err
	}
	if !found {
		return storedSession{}, true, ErrSessionInvalid
	}

	rawType, _ := c.store.Get(ctx, storage.KeyUserType)
	userType, err := auth.ParseUserType(rawType)
	if err != nil {
		return storedSession{}, true, err
	}

	var perms []string
	if _, err := c.store.GetJSON(ctx, storage.KeyPermissions, &perms); err != nil {
		perms = nil
	}

	remember, _ := c.store.Get(ctx, storage.KeyRememberMe)
	durable, _ := strconv.ParseBool(remember)

	return storedSession{
		token:       token,
		user:        &user,
		userType:    userType,
		permissions: perms,
		via:         auth.PersistenceFor(durable),
	}, true, nil
}

// resolvePermissions picks the first non-empty grant list, falling back to
// the role defaults.
func resolvePermissions(t auth.UserType, candidates ...[]string) []string {
	for _, list := range candidates {
		if len(list) > 0 {
			return append([]string(nil), list...)
		}
	}
	return permission.DefaultsFor(t)
}
