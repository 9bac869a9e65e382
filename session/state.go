package session

import (
	"time"

	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/permission"
)

// Status is the coarse session state.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is an immutable snapshot of the session.
type State struct {
	Status      Status
	Loading     bool
	Token       string
	User        *auth.User
	UserType    auth.UserType
	Permissions permission.Set
	Persistence auth.Persistence
	ExpiresAt   time.Time

	// Email is the last email submitted, kept after a failed login.
	Email string

	// Err is the user-facing error of the last transition, if any.
	Err error
}

// Authenticated reports whether a credential is active.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != ""
}

// Credential returns the active credential, or nil.
func (s State) Credential() *auth.Credential {
	if !s.Authenticated() {
		return nil
	}
	return &auth.Credential{
		Token:       s.Token,
		User:        s.User.Clone(),
		UserType:    s.UserType,
		Permissions: s.Permissions.Slice(),
		IssuedVia:   s.Persistence,
	}
}

// Action is a state transition fed to Reduce.
type Action interface {
	action()
}

// Loading toggles the loading flag.
type Loading struct{ Loading bool }

// LoginStarted marks a login in flight.
type LoginStarted struct{ Email string }

// LoginSucceeded installs a credential, from a login or a bootstrap.
type LoginSucceeded struct {
	Credential *auth.Credential
	ExpiresAt  time.Time
}

// LoginFailed clears any credential and records the error.
type LoginFailed struct {
	Email string
	Err   error
}

// LoggedOut clears the credential. Err is set for forced logouts.
type LoggedOut struct{ Err error }

// TokenRefreshed replaces the token of the active credential.
type TokenRefreshed struct {
	Token     string
	ExpiresAt time.Time
}

// UserUpdated replaces the cached profile of the active credential.
type UserUpdated struct{ User *auth.User }

func (Loading) action()        {}
func (LoginStarted) action()   {}
func (LoginSucceeded) action() {}
func (LoginFailed) action()    {}
func (LoggedOut) action()      {}
func (TokenRefreshed) action() {}
func (UserUpdated) action()    {}

// Reduce returns the state after applying a. It never mutates s.
// Token and profile updates are ignored unless a credential is active.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Loading:
		s.Loading = a.Loading

	case LoginStarted:
		s = State{
			Status:  StatusAuthenticating,
			Loading: true,
			Email:   a.Email,
		}

	case LoginSucceeded:
		if a.Credential == nil {
			return s
		}
		user := a.Credential.User.Clone()
		email := s.Email
		if user != nil && user.Email != "" {
			email = user.Email
		}
		s = State{
			Status:      StatusAuthenticated,
			Token:       a.Credential.Token,
			User:        user,
			UserType:    a.Credential.UserType,
			Permissions: permission.NewSet(a.Credential.Permissions...),
			Persistence: a.Credential.IssuedVia,
			ExpiresAt:   a.ExpiresAt,
			Email:       email,
		}

	case LoginFailed:
		s = State{
			Status: StatusUnauthenticated,
			Email:  a.Email,
			Err:    a.Err,
		}

	case LoggedOut:
		s = State{
			Status: StatusUnauthenticated,
			Err:    a.Err,
		}

	case TokenRefreshed:
		if !s.Authenticated() || a.Token == "" {
			return s
		}
		s.Token = a.Token
		s.ExpiresAt = a.ExpiresAt
		s.Err = nil

	case UserUpdated:
		if !s.Authenticated() || a.User == nil {
			return s
		}
		s.User = a.User.Clone()
	}
	return s
}
