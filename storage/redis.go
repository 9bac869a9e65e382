package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the shared persistent tier.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces keys inside the redis database.
	// Default: "gamenet:"
	KeyPrefix string
}

// RedisTier persists credentials in redis. Every process pointed at the
// same database sees the same session; concurrent writers resolve by
// last write wins.
type RedisTier struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisTier connects to the configured redis instance.
func NewRedisTier(config RedisConfig) *RedisTier {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisTierWithClient(client, config.KeyPrefix)
}

// NewRedisTierWithClient wraps an existing client.
func NewRedisTierWithClient(client redis.UniversalClient, prefix string) *RedisTier {
	if prefix == "" {
		prefix = "gamenet:"
	}
	return &RedisTier{client: client, prefix: prefix}
}

// Name returns "redis".
func (r *RedisTier) Name() string {
	return "redis"
}

// Get retrieves a value. Returns ("", false, nil) on miss.
func (r *RedisTier) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: redis get: %w", err)
	}
	return v, true, nil
}

// Set stores a value without expiry.
func (r *RedisTier) Set(ctx context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set: %w", err)
	}
	return nil
}

// Delete removes a value. Idempotent.
func (r *RedisTier) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("storage: redis delete: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisTier) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisTier) Close() error {
	return r.client.Close()
}

var (
	_ Tier   = (*RedisTier)(nil)
	_ Pinger = (*RedisTier)(nil)
)
