package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// BadgerConfig configures the on-disk persistent tier.
type BadgerConfig struct {
	// Dir is the database directory. Empty means an in-memory database,
	// which is only useful in tests.
	Dir string

	// KeyPrefix namespaces keys when the database is shared.
	// Default: "gamenet:"
	KeyPrefix string
}

// BadgerTier persists credentials in an embedded badger database so they
// survive restarts.
type BadgerTier struct {
	db     *badger.DB
	prefix string
}

// NewBadgerTier opens (or creates) the database at config.Dir.
func NewBadgerTier(config BadgerConfig) (*BadgerTier, error) {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "gamenet:"
	}

	opts := badger.DefaultOptions(config.Dir).WithLogger(nil)
	if config.Dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}

	return &BadgerTier{db: db, prefix: config.KeyPrefix}, nil
}

// Name returns "badger".
func (b *BadgerTier) Name() string {
	return "badger"
}

func (b *BadgerTier) key(k string) []byte {
	return []byte(b.prefix + k)
}

// Get retrieves a value. Returns ("", false, nil) on miss.
func (b *BadgerTier) Get(_ context.Context, key string) (string, bool, error) {
	if b.db.IsClosed() {
		return "", false, ErrClosed
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, b.wrap("get", err)
	}
	return string(value), true, nil
}

// Set stores a value.
func (b *BadgerTier) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if b.db.IsClosed() {
		return ErrClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(key), []byte(value))
	})
	return b.wrap("set", err)
}

// Delete removes a value. Idempotent.
func (b *BadgerTier) Delete(_ context.Context, key string) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
	return b.wrap("delete", err)
}

// Ping reports whether the database is still open.
func (b *BadgerTier) Ping(_ context.Context) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close closes the database.
func (b *BadgerTier) Close() error {
	return b.db.Close()
}

func (b *BadgerTier) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("storage: badger %s: %w", op, err)
}

var (
	_ Tier   = (*BadgerTier)(nil)
	_ Pinger = (*BadgerTier)(nil)
)
