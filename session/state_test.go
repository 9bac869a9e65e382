package session

import (
	"errors"
	"testing"

	"github.com/jonwraymond/gamenetauth/auth"
)

func TestReduce(t *testing.T) {
	cred := &auth.Credential{
		Token:       "a.b.c",
		User:        &auth.User{ID: "1", Email: "a@example.com"},
		UserType:    auth.UserTypeAdmin,
		Permissions: []string{"users:*"},
		IssuedVia:   auth.PersistDurable,
	}
	authed := Reduce(State{}, LoginSucceeded{Credential: cred})
	failure := errors.New("boom")

	tests := []struct {
		name   string
		from   State
		action Action
		check  func(t *testing.T, s State)
	}{
		{
			name:   "login started",
			from:   State{Loading: false, Err: failure},
			action: LoginStarted{Email: "a@example.com"},
			check: func(t *testing.T, s State) {
				if s.Status != StatusAuthenticating || !s.Loading || s.Err != nil || s.Email != "a@example.com" {
					t.Errorf("state = %+v", s)
				}
			},
		},
		{
			name:   "login succeeded installs full credential",
			from:   State{Status: StatusAuthenticating, Loading: true},
			action: LoginSucceeded{Credential: cred},
			check: func(t *testing.T, s State) {
				if !s.Authenticated() || s.Loading || s.User == nil || s.Token != "a.b.c" {
					t.Errorf("state = %+v", s)
				}
				if !s.Permissions.CanAccess("users", "delete") {
					t.Error("permissions not installed")
				}
				if s.User == cred.User {
					t.Error("reducer kept the caller's user pointer")
				}
			},
		},
		{
			name:   "login failed keeps email",
			from:   authed,
			action: LoginFailed{Email: "a@example.com", Err: auth.ErrInvalidCredentials},
			check: func(t *testing.T, s State) {
				if s.Authenticated() || s.Token != "" || s.User != nil {
					t.Errorf("credential survived failure: %+v", s)
				}
				if s.Email != "a@example.com" || !errors.Is(s.Err, auth.ErrInvalidCredentials) {
					t.Errorf("state = %+v", s)
				}
			},
		},
		{
			name:   "logged out",
			from:   authed,
			action: LoggedOut{Err: auth.ErrSessionExpired},
			check: func(t *testing.T, s State) {
				if s.Status != StatusUnauthenticated || s.Token != "" || s.Permissions.Len() != 0 {
					t.Errorf("state = %+v", s)
				}
			},
		},
		{
			name:   "refresh ignored without session",
			from:   State{},
			action: TokenRefreshed{Token: "x.y.z"},
			check: func(t *testing.T, s State) {
				if s.Token != "" {
					t.Errorf("Token = %q, want empty", s.Token)
				}
			},
		},
		{
			name:   "refresh replaces token only",
			from:   authed,
			action: TokenRefreshed{Token: "x.y.z"},
			check: func(t *testing.T, s State) {
				if s.Token != "x.y.z" || s.User == nil || s.User.ID != "1" {
					t.Errorf("state = %+v", s)
				}
			},
		},
		{
			name:   "user updated keeps token",
			from:   authed,
			action: UserUpdated{User: &auth.User{ID: "1", Email: "a@example.com", Name: "New"}},
			check: func(t *testing.T, s State) {
				if s.Token != "a.b.c" || s.User.Name != "New" {
					t.Errorf("state = %+v", s)
				}
			},
		},
		{
			name:   "user updated ignored without session",
			from:   State{},
			action: UserUpdated{User: &auth.User{ID: "1"}},
			check: func(t *testing.T, s State) {
				if s.User != nil {
					t.Errorf("User = %+v, want nil", s.User)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Reduce(tt.from, tt.action))
		})
	}
}

func TestState_Credential(t *testing.T) {
	if (State{}).Credential() != nil {
		t.Error("Credential() of empty state != nil")
	}
	s := Reduce(State{}, LoginSucceeded{Credential: &auth.Credential{
		Token:     "a.b.c",
		User:      &auth.User{ID: "9"},
		UserType:  auth.UserTypeUser,
		IssuedVia: auth.PersistSession,
	}})
	cred := s.Credential()
	if cred == nil || cred.UserID() != "9" || cred.UserType != auth.UserTypeUser {
		t.Errorf("Credential() = %+v", cred)
	}
}

func TestStatus_String(t *testing.T) {
	for status, want := range map[Status]string{
		StatusUnauthenticated: "unauthenticated",
		StatusAuthenticating:  "authenticating",
		StatusAuthenticated:   "authenticated",
	} {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}
