package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/lockout"
	"github.com/jonwraymond/gamenetauth/storage"
)

var checkNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time { return func() time.Time { return t } }

// brokenTier fails writes and optionally pings.
type brokenTier struct {
	*storage.MemoryTier
	pingErr error
	setErr  error
}

func (b *brokenTier) Set(ctx context.Context, key, value string) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.MemoryTier.Set(ctx, key, value)
}

func (b *brokenTier) Ping(context.Context) error { return b.pingErr }

func TestTierChecker(t *testing.T) {
	down := errors.New("connection refused")
	full := errors.New("disk full")

	tests := []struct {
		name string
		tier storage.Tier
		want Status
	}{
		{"memory", storage.NewMemoryTier("session"), StatusHealthy},
		{"pinger ok", &brokenTier{MemoryTier: storage.NewMemoryTier("redis")}, StatusHealthy},
		{"ping fails", &brokenTier{MemoryTier: storage.NewMemoryTier("redis"), pingErr: down}, StatusUnhealthy},
		{"write fails", &brokenTier{MemoryTier: storage.NewMemoryTier("badger"), setErr: full}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTierChecker(tt.tier)
			if got := c.Check(context.Background()); got.Status != tt.want {
				t.Errorf("Check() = %+v, want %v", got, tt.want)
			}
		})
	}
}

func TestTierChecker_LeavesNoProbe(t *testing.T) {
	tier := storage.NewMemoryTier("persistent")
	c := NewTierChecker(tier)
	if c.Name() != "storage.persistent" {
		t.Errorf("Name() = %q", c.Name())
	}
	c.Check(context.Background())
	if n := tier.Len(); n != 0 {
		t.Errorf("tier holds %d keys after probe, want 0", n)
	}
}

func TestAPIChecker(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Status
	}{
		{"ok", http.StatusOK, StatusHealthy},
		{"not found still reachable", http.StatusNotFound, StatusHealthy},
		{"server error", http.StatusServiceUnavailable, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("apiclient.New() error = %v", err)
			}
			if got := NewAPIChecker(client).Check(context.Background()); got.Status != tt.want {
				t.Errorf("Check() = %+v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIChecker_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := apiclient.New(apiclient.Config{BaseURL: url})
	if err != nil {
		t.Fatalf("apiclient.New() error = %v", err)
	}
	got := NewAPIChecker(client).Check(context.Background())
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, apiclient.ErrNetwork) {
		t.Errorf("Check() = %+v, want unhealthy network error", got)
	}
}

func TestTokenChecker(t *testing.T) {
	sign := func(exp time.Time) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).
			SignedString([]byte("k"))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		return tok
	}

	tests := []struct {
		name  string
		token string
		want  Status
	}{
		{"no session", "", StatusHealthy},
		{"valid", sign(checkNow.Add(time.Hour)), StatusHealthy},
		{"expiring soon", sign(checkNow.Add(3 * time.Minute)), StatusDegraded},
		{"expired", sign(checkNow.Add(-time.Minute)), StatusUnhealthy},
		{"malformed", "not-a-token", StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.New(storage.Config{})
			if tt.token != "" {
				store.Set(context.Background(), storage.KeyToken, tt.token, true)
			}
			tokens := auth.NewTokenLifecycle(auth.TokenConfig{Now: clockAt(checkNow)})

			if got := NewTokenChecker(store, tokens).Check(context.Background()); got.Status != tt.want {
				t.Errorf("Check() = %+v, want %v", got, tt.want)
			}
		})
	}
}

func TestLockoutChecker(t *testing.T) {
	store := storage.New(storage.Config{})
	limiter := lockout.New(store, lockout.Config{Now: clockAt(checkNow)})
	c := NewLockoutChecker(limiter)
	ctx := context.Background()

	if got := c.Check(ctx); got.Status != StatusHealthy {
		t.Errorf("Check() = %+v, want healthy", got)
	}
	for i := 0; i < lockout.DefaultMaxAttempts; i++ {
		limiter.RecordAttempt(ctx)
	}
	got := c.Check(ctx)
	if got.Status != StatusDegraded {
		t.Errorf("Check() = %+v, want degraded", got)
	}
	if got.Message != "login blocked for 15m0s" {
		t.Errorf("Message = %q", got.Message)
	}
}
