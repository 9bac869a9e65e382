package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonwraymond/gamenetauth/observe"
)

// Config wires the tiers of a Store.
type Config struct {
	// Session holds values written with persistent=false.
	// Default: a fresh MemoryTier.
	Session Tier

	// Persistent holds values written with persistent=true.
	// Default: a fresh MemoryTier (nothing survives a restart).
	Persistent Tier

	// Fallback absorbs writes the chosen tier rejected.
	// Default: a fresh MemoryTier.
	Fallback *MemoryTier

	// Logger receives degraded-write warnings.
	Logger observe.Logger
}

// Store is the three-tier credential store.
//
// Reads go session -> persistent -> fallback. Writes go to the tier chosen
// by the persistent flag; if that write fails the value lands in the
// fallback and the failure is logged, never returned.
type Store struct {
	session    Tier
	persistent Tier
	fallback   *MemoryTier
	logger     observe.Logger
}

// New creates a Store from config.
func New(config Config) *Store {
	if config.Session == nil {
		config.Session = NewMemoryTier("session")
	}
	if config.Persistent == nil {
		config.Persistent = NewMemoryTier("persistent")
	}
	if config.Fallback == nil {
		config.Fallback = NewMemoryTier("fallback")
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &Store{
		session:    config.Session,
		persistent: config.Persistent,
		fallback:   config.Fallback,
		logger:     config.Logger.With(observe.F("component", "storage")),
	}
}

// Set writes value under key. The value is removed from the other tiers so
// a stale copy can never shadow it.
func (s *Store) Set(ctx context.Context, key, value string, persistent bool) {
	target, other := s.session, s.persistent
	if persistent {
		target, other = s.persistent, s.session
	}

	if err := target.Set(ctx, key, value); err != nil {
		s.logger.Warn(ctx, "storage write failed, keeping value in memory",
			observe.F("tier", target.Name()),
			observe.F("key", key),
			observe.F("error", err.Error()),
		)
		if ferr := s.fallback.Set(ctx, key, value); ferr != nil {
			s.logger.Error(ctx, "fallback write failed",
				observe.F("key", key),
				observe.F("error", ferr.Error()),
			)
		}
	} else {
		s.deleteQuiet(ctx, s.fallback, key)
	}

	s.deleteQuiet(ctx, other, key)
}

// Get reads key from the first tier holding it.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	for _, tier := range []Tier{s.session, s.persistent, s.fallback} {
		v, ok, err := tier.Get(ctx, key)
		if err != nil {
			s.logger.Warn(ctx, "storage read failed",
				observe.F("tier", tier.Name()),
				observe.F("key", key),
				observe.F("error", err.Error()),
			)
			continue
		}
		if ok {
			return v, true
		}
	}
	return "", false
}

// Remove deletes keys from every tier.
func (s *Store) Remove(ctx context.Context, keys ...string) {
	for _, key := range keys {
		for _, tier := range []Tier{s.session, s.persistent, s.fallback} {
			s.deleteQuiet(ctx, tier, key)
		}
	}
}

// SetJSON marshals v and stores it. Only a marshal failure is reported.
func (s *Store) SetJSON(ctx context.Context, key string, v any, persistent bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	s.Set(ctx, key, string(data), persistent)
	return nil
}

// GetJSON reads key into dst. It reports (false, nil) on miss and an error
// when the stored value is not valid JSON for dst.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return true, nil
}

// Tiers returns the session, persistent and fallback tiers in read order.
func (s *Store) Tiers() []Tier {
	return []Tier{s.session, s.persistent, s.fallback}
}

// Close closes every tier.
func (s *Store) Close() error {
	var errs []error
	for _, tier := range s.Tiers() {
		if err := tier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) deleteQuiet(ctx context.Context, tier Tier, key string) {
	if err := tier.Delete(ctx, key); err != nil {
		s.logger.Debug(ctx, "storage delete failed",
			observe.F("tier", tier.Name()),
			observe.F("key", key),
			observe.F("error", err.Error()),
		)
	}
}
