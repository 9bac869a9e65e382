package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/lockout"
	"github.com/jonwraymond/gamenetauth/storage"
)

// probeKeyPrefix namespaces the round-trip key written by TierChecker.
const probeKeyPrefix = "health_probe_"

// TierChecker verifies a storage tier. Tiers backed by a service are
// pinged; every tier then gets a write/read/delete round trip.
type TierChecker struct {
	tier storage.Tier
}

// NewTierChecker creates a checker for tier.
func NewTierChecker(tier storage.Tier) *TierChecker {
	return &TierChecker{tier: tier}
}

// Name returns "storage.<tier>".
func (c *TierChecker) Name() string {
	return "storage." + c.tier.Name()
}

// Check runs the probe.
func (c *TierChecker) Check(ctx context.Context) Result {
	if p, ok := c.tier.(storage.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return Unhealthy("ping failed", err)
		}
	}

	key := probeKeyPrefix + uuid.NewString()
	want := time.Now().UTC().Format(time.RFC3339Nano)
	if err := c.tier.Set(ctx, key, want); err != nil {
		return Unhealthy("write failed", err)
	}
	defer func() { _ = c.tier.Delete(context.WithoutCancel(ctx), key) }()

	got, ok, err := c.tier.Get(ctx, key)
	switch {
	case err != nil:
		return Unhealthy("read failed", err)
	case !ok || got != want:
		return Unhealthy("read back a different value", ErrProbeMismatch)
	}
	return Healthy("read/write ok")
}

// Pinger is satisfied by *apiclient.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIChecker reports whether the auth API answers.
type APIChecker struct {
	api Pinger
}

// NewAPIChecker creates a checker for api.
func NewAPIChecker(api Pinger) *APIChecker {
	return &APIChecker{api: api}
}

// Name returns "api".
func (c *APIChecker) Name() string {
	return "api"
}

// Check pings the API.
func (c *APIChecker) Check(ctx context.Context) Result {
	start := time.Now()
	if err := c.api.Ping(ctx); err != nil {
		return Unhealthy("api unreachable", err)
	}
	return Healthy("api reachable").WithDetails(map[string]any{
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

// TokenChecker inspects the stored token without contacting the API.
// No token is healthy: there is simply no session.
type TokenChecker struct {
	store  *storage.Store
	tokens *auth.TokenLifecycle
}

// NewTokenChecker creates a checker reading the token from store.
func NewTokenChecker(store *storage.Store, tokens *auth.TokenLifecycle) *TokenChecker {
	return &TokenChecker{store: store, tokens: tokens}
}

// Name returns "token".
func (c *TokenChecker) Name() string {
	return "token"
}

// Check classifies the stored token.
func (c *TokenChecker) Check(ctx context.Context) Result {
	token, ok := c.store.Get(ctx, storage.KeyToken)
	if !ok || token == "" {
		return Healthy("no stored session")
	}
	if !c.tokens.IsValidFormat(token) {
		return Unhealthy("stored token is malformed", auth.ErrTokenMalformed)
	}
	if c.tokens.IsExpired(token) {
		return Unhealthy("stored token has expired", auth.ErrSessionExpired)
	}

	remaining := c.tokens.Remaining(token)
	details := map[string]any{"remaining": remaining.Round(time.Second).String()}
	if c.tokens.IsExpiringSoon(token, 0) {
		return Degraded("stored token expires soon").WithDetails(details)
	}
	return Healthy("stored token valid").WithDetails(details)
}

// LockoutChecker reports the login limiter.
type LockoutChecker struct {
	limiter *lockout.Limiter
}

// NewLockoutChecker creates a checker for limiter.
func NewLockoutChecker(limiter *lockout.Limiter) *LockoutChecker {
	return &LockoutChecker{limiter: limiter}
}

// Name returns "lockout".
func (c *LockoutChecker) Name() string {
	return "lockout"
}

// Check reports Degraded while logins are blocked.
func (c *LockoutChecker) Check(ctx context.Context) Result {
	st := c.limiter.State(ctx)
	details := map[string]any{"attempts": st.Attempts}
	if st.Blocked {
		msg := fmt.Sprintf("login blocked for %s", st.Remaining.Round(time.Second))
		return Degraded(msg).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d recent failed attempts", st.Attempts)).WithDetails(details)
}

var (
	_ Checker = (*TierChecker)(nil)
	_ Checker = (*APIChecker)(nil)
	_ Checker = (*TokenChecker)(nil)
	_ Checker = (*LockoutChecker)(nil)
	_ Checker = (*CheckerFunc)(nil)
)
