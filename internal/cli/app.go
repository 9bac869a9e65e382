package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/gamenetauth/apiclient"
	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/config"
	"github.com/jonwraymond/gamenetauth/lockout"
	"github.com/jonwraymond/gamenetauth/observe"
	"github.com/jonwraymond/gamenetauth/session"
	"github.com/jonwraymond/gamenetauth/storage"
)

// app holds the components one command invocation works with.
type app struct {
	cfg        config.Config
	obs        observe.Observer
	mw         *observe.Middleware
	persistent storage.Tier
	store      *storage.Store
	client     *apiclient.Client
	tokens     *auth.TokenLifecycle
	limiter    *lockout.Limiter
	ctrl       *session.Controller
}

// newApp wires the session controller from cfg. The background refresh
// loop stays off: every command is a single short-lived operation.
func newApp(ctx context.Context, cfg config.Config, now func() time.Time) (*app, error) {
	if now == nil {
		now = time.Now
	}

	obs, err := observe.NewObserver(ctx, cfg.ObserverConfig())
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("observe: %w", err)
	}

	persistent, err := openPersistent(cfg.Storage)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	store := storage.New(storage.Config{
		Persistent: persistent,
		Logger:     obs.Logger(),
	})

	client, err := apiclient.New(apiclient.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout.Std(),
		MaxAttempts:    cfg.API.MaxAttempts,
		InitialBackoff: cfg.API.InitialBackoff.Std(),
		MaxBackoff:     cfg.API.MaxBackoff.Std(),
		UserAgent:      cfg.API.UserAgent,
		Middleware:     mw,
	})
	if err != nil {
		_ = store.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	tokens := auth.NewTokenLifecycle(cfg.TokenConfig(now))
	limiter := lockout.New(store, cfg.LimiterConfig(now))

	ctrl, err := session.New(session.Config{
		API:                client,
		Store:              store,
		Limiter:            limiter,
		Tokens:             tokens,
		CheckInterval:      cfg.Session.CheckInterval.Std(),
		DisableRefreshLoop: true,
		Middleware:         mw,
		Now:                now,
	})
	if err != nil {
		_ = store.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:        cfg,
		obs:        obs,
		mw:         mw,
		persistent: persistent,
		store:      store,
		client:     client,
		tokens:     tokens,
		limiter:    limiter,
		ctrl:       ctrl,
	}, nil
}

func openPersistent(cfg config.StorageConfig) (storage.Tier, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		return storage.NewBadgerTier(storage.BadgerConfig{
			Dir:       cfg.Badger.Dir,
			KeyPrefix: cfg.Badger.Prefix,
		})
	case config.BackendRedis:
		return storage.NewRedisTier(storage.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.Prefix,
		}), nil
	case config.BackendMemory:
		return storage.NewMemoryTier("persistent"), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}

// restore loads the stored session. A rejected session is reported on the
// logger and leaves the controller unauthenticated.
func (a *app) restore(ctx context.Context) {
	if err := a.ctrl.Bootstrap(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.obs.Logger().Warn(ctx, "stored session rejected", observe.F("error", err.Error()))
	}
}

// Close releases storage and flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(
		a.ctrl.Close(),
		a.store.Close(),
		a.obs.Shutdown(ctx),
	)
}
