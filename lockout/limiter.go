package lockout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonwraymond/gamenetauth/storage"
)

// Defaults for the limiter.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	// MaxAttempts is the number of failures inside Window that blocks login.
	// Default: 5
	MaxAttempts int

	// Window is the trailing interval over which failures count.
	// Default: 15m
	Window time.Duration

	// Key is the storage key of the attempt record.
	// Default: storage.KeyLoginAttempts
	Key string

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// State is a snapshot of the limiter.
type State struct {
	Blocked   bool
	Remaining time.Duration
	Attempts  int
}

// Limiter tracks failed logins.
//
// Contract:
//   - Concurrency: safe for concurrent use within one process. Writers in
//     other processes sharing the tier race last-write-wins.
//   - Errors: storage problems degrade to an empty record, never an error.
type Limiter struct {
	config Config
	store  *storage.Store
	mu     sync.Mutex
}

// New creates a Limiter over store.
func New(store *storage.Store, config Config) *Limiter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.Window <= 0 {
		config.Window = DefaultWindow
	}
	if config.Key == "" {
		config.Key = storage.KeyLoginAttempts
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Limiter{config: config, store: store}
}

// Config returns the effective configuration.
func (l *Limiter) Config() Config {
	return l.config
}

// RecordAttempt appends a failure at the current time and returns the
// resulting state.
func (l *Limiter) RecordAttempt(ctx context.Context) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.config.Now()
	attempts := append(l.load(ctx, now), now.UnixMilli())
	l.save(ctx, attempts)
	return l.stateOf(attempts, now)
}

// IsBlocked reports whether the window holds MaxAttempts or more failures.
func (l *Limiter) IsBlocked(ctx context.Context) bool {
	return l.State(ctx).Blocked
}

// RemainingLockout returns how long login stays blocked, or 0.
func (l *Limiter) RemainingLockout(ctx context.Context) time.Duration {
	return l.State(ctx).Remaining
}

// Attempts returns the number of failures inside the window.
func (l *Limiter) Attempts(ctx context.Context) int {
	return l.State(ctx).Attempts
}

// State returns the pruned state.
func (l *Limiter) State(ctx context.Context) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.config.Now()
	return l.stateOf(l.load(ctx, now), now)
}

// Clear drops the record.
func (l *Limiter) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.Remove(ctx, l.config.Key)
}

// load reads the record and prunes entries outside the window. A pruned
// record is written back.
func (l *Limiter) load(ctx context.Context, now time.Time) []int64 {
	var stored []int64
	if ok, err := l.store.GetJSON(ctx, l.config.Key, &stored); err != nil || !ok {
		return nil
	}

	cutoff := now.Add(-l.config.Window).UnixMilli()
	kept := stored[:0:0]
	for _, ts := range stored {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })

	if len(kept) != len(stored) {
		if len(kept) == 0 {
			l.store.Remove(ctx, l.config.Key)
		} else {
			l.save(ctx, kept)
		}
	}
	return kept
}

func (l *Limiter) save(ctx context.Context, attempts []int64) {
	_ = l.store.SetJSON(ctx, l.config.Key, attempts, true)
}

// stateOf computes the state for a pruned, ascending record. Login unlocks
// once the attempt at index len-MaxAttempts leaves the window.
func (l *Limiter) stateOf(attempts []int64, now time.Time) State {
	st := State{Attempts: len(attempts)}
	if len(attempts) < l.config.MaxAttempts {
		return st
	}

	pivot := time.UnixMilli(attempts[len(attempts)-l.config.MaxAttempts])
	remaining := pivot.Add(l.config.Window).Sub(now)
	if remaining <= 0 {
		return st
	}
	st.Blocked = true
	st.Remaining = remaining
	return st
}
