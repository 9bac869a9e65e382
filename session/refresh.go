package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/observe"
	"github.com/jonwraymond/gamenetauth/storage"
)

// RefreshToken exchanges the current token for a new one. Concurrent calls
// share one request. A failed refresh forces a logout and returns an error
// wrapping auth.ErrSessionExpired.
func (c *Controller) RefreshToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Controller) refresh(ctx context.Context) error {
	st := c.State()
	if !st.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	op := observe.Operation{Component: "session", Name: "refresh", UserType: string(st.UserType)}
	return c.mw.Run(ctx, op, func(ctx context.Context) error {
		resp, err := c.api.Refresh(ctx, st.Token, st.Persistence == auth.PersistDurable)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Warn(ctx, "token refresh failed", observe.F("error", err.Error()))
			if c.State().Token != st.Token {
				// A login or logout replaced the credential meanwhile.
				return nil
			}
			c.forceLogout(ctx, auth.ErrSessionExpired)
			return fmt.Errorf("%w: %w", auth.ErrSessionExpired, classify(err))
		}

		if c.State().Token != st.Token {
			return nil
		}

		c.store.Set(ctx, storage.KeyToken, resp.Token, st.Persistence == auth.PersistDurable)
		c.dispatch(TokenRefreshed{Token: resp.Token, ExpiresAt: c.expiresAt(resp.Token, resp.ExpiresAt.Time)})
		c.mw.Event(ctx, observe.EventTokenRefresh)
		return nil
	})
}

// CheckToken runs one cycle of the periodic check: refresh a token that
// expires within the refresh window, and force a logout if the token is
// already expired. It is a no-op without a session.
func (c *Controller) CheckToken(ctx context.Context) error {
	st := c.State()
	if !st.Authenticated() {
		return nil
	}

	if c.tokens.IsExpiringSoon(st.Token, 0) {
		return c.RefreshToken(ctx)
	}
	if c.tokens.IsExpired(st.Token) {
		c.logger.Info(ctx, "token expired, ending session")
		c.forceLogout(ctx, auth.ErrSessionExpired)
		return auth.ErrSessionExpired
	}
	return nil
}

// startLoop starts the periodic check unless disabled or already running.
func (c *Controller) startLoop() {
	if c.config.DisableRefreshLoop {
		return
	}

	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.loopCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.loopCancel = cancel
	c.loopDone = done

	go c.runLoop(ctx, done)
}

// stopLoop cancels the periodic check and returns a channel closed when
// it exits, or nil if none was running. It does not wait, so the loop may
// call it on itself.
func (c *Controller) stopLoop() <-chan struct{} {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.loopCancel == nil {
		return nil
	}
	c.loopCancel()
	done := c.loopDone
	c.loopCancel = nil
	c.loopDone = nil
	return done
}

func (c *Controller) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.CheckToken(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn(ctx, "periodic token check failed", observe.F("error", err.Error()))
			}
		}
	}
}
