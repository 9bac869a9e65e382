package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/observe"
)

// Bootstrap restores a stored session. A missing token settles to
// unauthenticated and returns nil. An expired token, unreadable stored
// data, or a failed profile fetch clears storage and returns an error
// wrapping ErrSessionInvalid. The state always leaves the loading phase.
func (c *Controller) Bootstrap(ctx context.Context) error {
	op := observe.Operation{Component: "session", Name: "bootstrap"}
	return c.mw.Run(ctx, op, func(ctx context.Context) error {
		c.dispatch(Loading{Loading: true})

		stored, ok, err := c.loadStored(ctx)
		if !ok {
			c.dispatch(LoggedOut{})
			return nil
		}
		if err != nil {
			return c.rejectStored(ctx, err)
		}
		if !c.tokens.IsValidFormat(stored.token) || c.tokens.IsExpired(stored.token) {
			return c.rejectStored(ctx, auth.ErrSessionExpired)
		}

		user, err := c.api.Profile(ctx, stored.token)
		if errors.Is(err, context.Canceled) {
			c.dispatch(LoggedOut{})
			return err
		}
		if err != nil {
			c.logger.Warn(ctx, "profile validation failed", observe.F("error", err.Error()))
			return c.rejectStored(ctx, classify(err))
		}
		if user == nil {
			c.logger.Warn(ctx, "profile validation returned no user")
			return c.rejectStored(ctx, fmt.Errorf("%w: empty profile", apiclient.ErrInvalidResponse))
		}

		cred := &auth.Credential{
			Token:       stored.token,
			User:        user,
			UserType:    stored.userType,
			Permissions: resolvePermissions(stored.userType, user.Permissions, stored.permissions),
			IssuedVia:   stored.via,
		}
		c.persist(ctx, cred)

		expiresAt, _ := c.tokens.ExpiresAt(stored.token)
		c.dispatch(LoginSucceeded{Credential: cred, ExpiresAt: expiresAt})
		c.startLoop()

		c.logger.Info(ctx, "session restored",
			observe.F("user_id", cred.UserID()),
			observe.F("user_type", string(cred.UserType)),
			observe.F("persistence", cred.IssuedVia.String()),
		)
		return nil
	})
}

func (c *Controller) rejectStored(ctx context.Context, reason error) error {
	c.clearStored(ctx)
	c.dispatch(LoggedOut{})
	return fmt.Errorf("%w: %w", ErrSessionInvalid, reason)
}

// Login authenticates with email and password.
//
// While the attempt limiter blocks, Login returns a *LockoutError without
// calling the API. The email is sanitized; the password is sent as typed.
// Every failed remote login records an attempt. A rejection returns
// auth.ErrInvalidCredentials whatever the server said; transport and server
// failures return auth.ErrNetwork or auth.ErrServiceUnavailable. A cancelled
// ctx is not counted. Any failure ends an active session and clears storage.
func (c *Controller) Login(ctx context.Context, email, password string, rememberMe bool) error {
	op := observe.Operation{Component: "session", Name: "login"}
	return c.mw.Run(ctx, op, func(ctx context.Context) error {
		creds := auth.LoginCredentials{Email: email, Password: password}.Sanitized()

		if st := c.limiter.State(ctx); st.Blocked {
			err := &LockoutError{Remaining: st.Remaining}
			c.failLogin(ctx, creds.Email, err)
			c.mw.Event(ctx, observe.EventLoginBlocked,
				observe.F("remaining_ms", st.Remaining.Milliseconds()))
			return err
		}

		if err := creds.Validate(); err != nil {
			c.failLogin(ctx, creds.Email, err)
			return err
		}

		c.stopLoop()
		c.dispatch(LoginStarted{Email: creds.Email})

		resp, err := c.api.Login(ctx, apiclient.LoginRequest{
			Email:      creds.Email,
			Password:   creds.Password,
			RememberMe: rememberMe,
		})
		if err != nil {
			public := classify(err)
			if !errors.Is(err, context.Canceled) {
				st := c.limiter.RecordAttempt(ctx)
				c.logger.Warn(ctx, "login failed",
					observe.F("error", err.Error()),
					observe.F("attempts", st.Attempts),
					observe.F("blocked", st.Blocked),
				)
			}
			c.failLogin(ctx, creds.Email, public)
			return public
		}

		if resp.User == nil || resp.Token == "" {
			c.logger.Error(ctx, "login response missing token or user")
			c.limiter.RecordAttempt(ctx)
			c.failLogin(ctx, creds.Email, auth.ErrServiceUnavailable)
			return auth.ErrServiceUnavailable
		}

		userType, perr := auth.ParseUserType(resp.UserType)
		if perr != nil {
			c.logger.Warn(ctx, "unknown user type, using least privileged role",
				observe.F("user_type", resp.UserType))
			userType = auth.UserTypeUser
		}

		cred := &auth.Credential{
			Token:       resp.Token,
			User:        resp.User,
			UserType:    userType,
			Permissions: resolvePermissions(userType, resp.Permissions, resp.User.Permissions),
			IssuedVia:   auth.PersistenceFor(rememberMe),
		}
		c.persist(ctx, cred)
		c.limiter.Clear(ctx)

		c.dispatch(LoginSucceeded{Credential: cred, ExpiresAt: c.expiresAt(resp.Token, resp.ExpiresAt.Time)})
		c.startLoop()

		c.logger.Info(ctx, "login succeeded",
			observe.F("user_id", cred.UserID()),
			observe.F("user_type", string(cred.UserType)),
			observe.F("persistence", cred.IssuedVia.String()),
		)
		return nil
	})
}

// failLogin ends any active session and settles to unauthenticated with err.
func (c *Controller) failLogin(ctx context.Context, email string, err error) {
	c.stopLoop()
	c.clearStored(ctx)
	c.dispatch(LoginFailed{Email: email, Err: err})
}

// Logout ends the session. The server call is best-effort; local state and
// storage are always cleared.
func (c *Controller) Logout(ctx context.Context) error {
	op := observe.Operation{Component: "session", Name: "logout"}
	return c.mw.Run(ctx, op, func(ctx context.Context) error {
		c.stopLoop()

		if token := c.State().Token; token != "" {
			if err := c.api.Logout(ctx, token); err != nil {
				c.logger.Warn(ctx, "remote logout failed", observe.F("error", err.Error()))
			}
		}

		c.clearStored(ctx)
		c.dispatch(LoggedOut{})
		return nil
	})
}

// forceLogout ends the session without a server call.
func (c *Controller) forceLogout(ctx context.Context, reason error) {
	c.stopLoop()
	c.clearStored(ctx)
	c.dispatch(LoggedOut{Err: reason})
	c.mw.Event(ctx, observe.EventForcedLogout, observe.F("reason", reason.Error()))
}

// UpdateUser replaces the cached profile. The token is untouched.
func (c *Controller) UpdateUser(ctx context.Context, user *auth.User) error {
	if user == nil {
		return fmt.Errorf("session: update user: nil user")
	}
	st := c.State()
	if !st.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	op := observe.Operation{Component: "session", Name: "update_user", UserType: string(st.UserType)}
	return c.mw.Run(ctx, op, func(ctx context.Context) error {
		c.persistUser(ctx, user, st.Persistence)
		c.dispatch(UserUpdated{User: user})
		return nil
	})
}

// expiresAt prefers the exp claim of token and falls back to the server's
// expires_at.
func (c *Controller) expiresAt(token string, fallback time.Time) time.Time {
	if exp, ok := c.tokens.ExpiresAt(token); ok {
		return exp
	}
	return fallback
}
