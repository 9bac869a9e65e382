package apiclient

import "github.com/jonwraymond/gamenetauth/auth"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	Token       string         `json:"token"`
	User        *auth.User     `json:"user"`
	UserType    string         `json:"user_type"`
	ExpiresAt   auth.Timestamp `json:"expires_at"`
	Permissions []string       `json:"permissions,omitempty"`
}

type refreshRequest struct {
	RememberMe bool `json:"remember_me"`
}

// RefreshResponse is the body returned by a successful refresh.
type RefreshResponse struct {
	Token     string         `json:"token"`
	ExpiresAt auth.Timestamp `json:"expires_at"`
}

type profileEnvelope struct {
	User *auth.User `json:"user"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
