package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/lockout"
	"github.com/jonwraymond/gamenetauth/observe"
	"github.com/jonwraymond/gamenetauth/permission"
	"github.com/jonwraymond/gamenetauth/storage"
)

// API is the remote auth contract.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: all methods must honor cancellation.
type API interface {
	Login(ctx context.Context, req apiclient.LoginRequest) (*apiclient.LoginResponse, error)
	Refresh(ctx context.Context, token string, rememberMe bool) (*apiclient.RefreshResponse, error)
	Profile(ctx context.Context, token string) (*auth.User, error)
	Logout(ctx context.Context, token string) error
}

var _ API = (*apiclient.Client)(nil)

// Config wires a Controller.
type Config struct {
	// API is the remote auth client. Required.
	API API

	// Store holds the persisted credential. Required.
	Store *storage.Store

	// Limiter blocks logins after repeated failures.
	// Default: lockout.New(Store, lockout.Config{Now: Now})
	Limiter *lockout.Limiter

	// Tokens inspects token expiry.
	// Default: auth.NewTokenLifecycle(auth.TokenConfig{Now: Now})
	Tokens *auth.TokenLifecycle

	// CheckInterval is the period of the background token check.
	// Default: 5m
	CheckInterval time.Duration

	// DisableRefreshLoop skips the background check. CheckToken still works.
	DisableRefreshLoop bool

	// Middleware instruments every operation. Default: no-op.
	Middleware *observe.Middleware

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Controller orchestrates the session.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Subscribers run synchronously on the dispatching goroutine and must
//     not call Controller methods that change state.
type Controller struct {
	api     API
	store   *storage.Store
	limiter *lockout.Limiter
	tokens  *auth.TokenLifecycle
	mw      *observe.Middleware
	logger  observe.Logger
	config  Config

	refreshGroup singleflight.Group

	// dispatchMu orders dispatch and notification.
	dispatchMu sync.Mutex

	mu          sync.RWMutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int

	loopMu     sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// New creates a Controller in the loading, unauthenticated state. Call
// Bootstrap to restore a stored session.
func New(config Config) (*Controller, error) {
	if config.API == nil {
		return nil, ErrMissingAPI
	}
	if config.Store == nil {
		return nil, ErrMissingStore
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Limiter == nil {
		config.Limiter = lockout.New(config.Store, lockout.Config{Now: config.Now})
	}
	if config.Tokens == nil {
		config.Tokens = auth.NewTokenLifecycle(auth.TokenConfig{Now: config.Now})
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = auth.DefaultCheckInterval
	}
	if config.Middleware == nil {
		config.Middleware = observe.NopMiddleware()
	}

	return &Controller{
		api:         config.API,
		store:       config.Store,
		limiter:     config.Limiter,
		tokens:      config.Tokens,
		mw:          config.Middleware,
		logger:      config.Middleware.Logger().With(observe.F("component", "session")),
		config:      config,
		state:       State{Status: StatusUnauthenticated, Loading: true},
		subscribers: make(map[int]func(State)),
	}, nil
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers fn for every subsequent transition and returns a
// function that removes it.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// dispatch applies a and notifies subscribers with the new snapshot.
func (c *Controller) dispatch(a Action) State {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	next := Reduce(c.state, a)
	c.state = next
	subs := make([]func(State), 0, len(c.subscribers))
	for id := 0; id < c.nextSubID; id++ {
		if fn, ok := c.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Permissions implements permission.Source.
func (c *Controller) Permissions(_ context.Context) (permission.Set, bool) {
	st := c.State()
	if !st.Authenticated() {
		return permission.Set{}, false
	}
	return st.Permissions, true
}

var _ permission.Source = (*Controller)(nil)

// HasPermission reports exact membership in the active grants.
func (c *Controller) HasPermission(perm string) bool {
	return c.State().Permissions.Has(perm)
}

// HasAnyPermission reports whether any of perms is granted.
func (c *Controller) HasAnyPermission(perms ...string) bool {
	return c.State().Permissions.HasAny(perms...)
}

// HasAllPermissions reports whether all of perms are granted. It is false
// without an authenticated session, even for an empty perms.
func (c *Controller) HasAllPermissions(perms ...string) bool {
	st := c.State()
	if !st.Authenticated() {
		return false
	}
	return st.Permissions.HasAll(perms...)
}

// CanAccess reports whether resource/action is granted, honoring resource:*.
func (c *Controller) CanAccess(resource, action string) bool {
	return c.State().Permissions.CanAccess(resource, action)
}

// Lockout returns the current limiter state.
func (c *Controller) Lockout(ctx context.Context) lockout.State {
	return c.limiter.State(ctx)
}

// WithCredential attaches the active credential to ctx.
func (c *Controller) WithCredential(ctx context.Context) context.Context {
	return auth.WithCredential(ctx, c.State().Credential())
}

// Close stops the background check and waits for it to exit.
func (c *Controller) Close() error {
	if done := c.stopLoop(); done != nil {
		<-done
	}
	return nil
}
