package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
)

// fakeDashboard serves the auth endpoints for one gamenet operator.
type fakeDashboard struct {
	t       *testing.T
	ttl     time.Duration
	logins  atomic.Int32
	logouts atomic.Int32
	token   atomic.Value
}

func (d *fakeDashboard) mint() string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "9",
		"exp": time.Now().Add(d.ttl).Unix(),
		"jti": fmt.Sprint(time.Now().UnixNano()),
	}).SignedString([]byte("cli-test"))
	if err != nil {
		d.t.Fatalf("SignedString() error = %v", err)
	}
	d.token.Store(tok)
	return tok
}

func (d *fakeDashboard) authorized(r *http.Request) bool {
	tok, _ := d.token.Load().(string)
	return tok != "" && r.Header.Get("Authorization") == "Bearer "+tok
}

func (d *fakeDashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case apiclient.PathLogin:
		d.logins.Add(1)
		var req apiclient.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "s3cret!" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":     d.mint(),
			"user":      map[string]any{"id": 9, "email": req.Email, "name": "Operator"},
			"user_type": "gamenet",
		})
	case apiclient.PathProfile:
		if !d.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":9,"email":"op@example.com","name":"Operator"}}`))
	case apiclient.PathRefresh:
		if !d.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": d.mint()})
	case apiclient.PathLogout:
		d.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

type cliEnv struct {
	dash   *fakeDashboard
	config string
}

func newCLIEnv(t *testing.T, ttl time.Duration) *cliEnv {
	t.Helper()
	dash := &fakeDashboard{t: t, ttl: ttl}
	srv := httptest.NewServer(dash)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := fmt.Sprintf(`api:
  base_url: %s
  max_attempts: 1
storage:
  backend: badger
  badger:
    dir: %s
observe:
  log_level: error
`, srv.URL, filepath.Join(dir, "badger"))
	path := filepath.Join(dir, "gamenet.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPassword, "")
	return &cliEnv{dash: dash, config: path}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_LoginStatusCanLogout(t *testing.T) {
	env := newCLIEnv(t, time.Hour)

	out, err := env.run(t, "s3cret!\n", "login", "--email", "OP@example.com", "--remember")
	if err != nil {
		t.Fatalf("login error = %v, output %q", err, out)
	}
	if !strings.Contains(out, "signed in as op@example.com (gamenet), session persistent") {
		t.Errorf("login output = %q", out)
	}

	out, err = env.run(t, "", "status", "--json")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("status output %q: %v", out, err)
	}
	if !view.Authenticated || view.UserType != "gamenet" || view.UserID != "9" {
		t.Errorf("status = %+v", view)
	}
	if got := view.Permissions["users"]; len(got) != 3 {
		t.Errorf("users grants = %v, want read/create/update", got)
	}
	for _, page := range view.Navigation {
		if page == "/gamenets" {
			t.Error("gamenet role sees the gamenets page")
		}
	}

	if out, err := env.run(t, "", "can", "users:create"); err != nil || !strings.HasPrefix(out, "yes") {
		t.Errorf("can users:create = %q, %v", out, err)
	}
	out, err = env.run(t, "", "can", "gamenets", "delete")
	if !errors.Is(err, ErrDenied) || !strings.HasPrefix(out, "no") {
		t.Errorf("can gamenets delete = %q, %v, want denied", out, err)
	}
	if _, err := env.run(t, "", "can", "users"); err == nil {
		t.Error("can with malformed permission succeeded")
	}

	out, err = env.run(t, "", "logout")
	if err != nil || !strings.Contains(out, "signed out") {
		t.Fatalf("logout = %q, %v", out, err)
	}
	if n := env.dash.logouts.Load(); n != 1 {
		t.Errorf("remote logouts = %d, want 1", n)
	}

	out, err = env.run(t, "", "status")
	if err != nil || !strings.Contains(out, "signed out") {
		t.Errorf("status after logout = %q, %v", out, err)
	}
}

func TestCLI_LoginRejectedThenLocked(t *testing.T) {
	env := newCLIEnv(t, time.Hour)

	for i := 0; i < 5; i++ {
		_, err := env.run(t, "", "login", "-e", "op@example.com", "-p", "guess")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	_, err := env.run(t, "", "login", "-e", "op@example.com", "-p", "s3cret!")
	if !errors.Is(err, auth.ErrLockedOut) {
		t.Fatalf("sixth login error = %v, want ErrLockedOut", err)
	}
	if n := env.dash.logins.Load(); n != 5 {
		t.Errorf("remote logins = %d, want 5", n)
	}

	out, err := env.run(t, "", "status")
	if err != nil || !strings.Contains(out, "blocked, retry in") {
		t.Errorf("status = %q, %v", out, err)
	}
}

func TestCLI_Refresh(t *testing.T) {
	env := newCLIEnv(t, 3*time.Minute)

	if _, err := env.run(t, "", "login", "-e", "op@example.com", "-p", "s3cret!", "-r"); err != nil {
		t.Fatalf("login error = %v", err)
	}
	first, _ := env.dash.token.Load().(string)

	out, err := env.run(t, "", "refresh")
	if err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	if !strings.Contains(out, "token refreshed") {
		t.Errorf("refresh output = %q", out)
	}
	if second, _ := env.dash.token.Load().(string); second == first {
		t.Error("server never issued a new token")
	}
}

func TestCLI_RefreshWithoutSession(t *testing.T) {
	env := newCLIEnv(t, time.Hour)
	if _, err := env.run(t, "", "refresh"); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("refresh error = %v, want ErrNotAuthenticated", err)
	}
}

func TestCLI_Doctor(t *testing.T) {
	env := newCLIEnv(t, time.Hour)

	out, err := env.run(t, "", "doctor")
	if err != nil {
		t.Fatalf("doctor error = %v, output %q", err, out)
	}
	for _, want := range []string{"storage.badger", "api", "token", "lockout", "overall"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ConfigShow(t *testing.T) {
	env := newCLIEnv(t, time.Hour)

	out, err := env.run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "backend: badger") || !strings.Contains(out, "max_attempts: 1") {
		t.Errorf("config show output:\n%s", out)
	}
}
