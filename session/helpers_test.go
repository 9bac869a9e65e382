package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/storage"
)

var testStart = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: testStart} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func mintToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return tok
}

// fakeAPI records calls and delegates to optional funcs.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	last  apiclient.LoginRequest

	login   func(req apiclient.LoginRequest) (*apiclient.LoginResponse, error)
	refresh func(token string, rememberMe bool) (*apiclient.RefreshResponse, error)
	profile func(token string) (*auth.User, error)
	logout  func(token string) error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(_ context.Context, req apiclient.LoginRequest) (*apiclient.LoginResponse, error) {
	f.record("login")
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	return f.login(req)
}

func (f *fakeAPI) Refresh(_ context.Context, token string, rememberMe bool) (*apiclient.RefreshResponse, error) {
	f.record("refresh")
	return f.refresh(token, rememberMe)
}

func (f *fakeAPI) Profile(_ context.Context, token string) (*auth.User, error) {
	f.record("profile")
	return f.profile(token)
}

func (f *fakeAPI) Logout(_ context.Context, token string) error {
	f.record("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(token)
}

type harness struct {
	clock      *fakeClock
	api        *fakeAPI
	session    *storage.MemoryTier
	persistent *storage.MemoryTier
	store      *storage.Store
	ctrl       *Controller
}

// newHarness builds a controller whose login accepts password "correct"
// and hands out a token valid for tokenTTL.
func newHarness(t *testing.T, tokenTTL time.Duration) *harness {
	t.Helper()
	h := &harness{
		clock:      newFakeClock(),
		session:    storage.NewMemoryTier("session"),
		persistent: storage.NewMemoryTier("persistent"),
	}
	h.store = storage.New(storage.Config{Session: h.session, Persistent: h.persistent})
	h.api = &fakeAPI{
		login: func(req apiclient.LoginRequest) (*apiclient.LoginResponse, error) {
			if req.Password != "correct" {
				return nil, &apiclient.StatusError{StatusCode: 401, Message: "user not found"}
			}
			return &apiclient.LoginResponse{
				Token:    mintToken(t, "42", h.clock.Now().Add(tokenTTL)),
				User:     &auth.User{ID: "42", Email: req.Email, Name: "Owner"},
				UserType: "gamenet",
			}, nil
		},
		refresh: func(string, bool) (*apiclient.RefreshResponse, error) {
			return &apiclient.RefreshResponse{Token: mintToken(t, "42", h.clock.Now().Add(time.Hour))}, nil
		},
		profile: func(string) (*auth.User, error) {
			return &auth.User{ID: "42", Email: "owner@example.com", Name: "Owner"}, nil
		},
	}
	h.ctrl = h.newController(t)
	return h
}

func (h *harness) newController(t *testing.T) *Controller {
	t.Helper()
	ctrl, err := New(Config{
		API:                h.api,
		Store:              h.store,
		Now:                h.clock.Now,
		DisableRefreshLoop: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = ctrl.Close() })
	return ctrl
}

func (h *harness) login(t *testing.T, rememberMe bool) {
	t.Helper()
	if err := h.ctrl.Login(context.Background(), "owner@example.com", "correct", rememberMe); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}

func tierHas(t *testing.T, tier storage.Tier, key string) bool {
	t.Helper()
	_, ok, err := tier.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("%s.Get(%q) error = %v", tier.Name(), key, err)
	}
	return ok
}
