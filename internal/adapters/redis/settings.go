// Package redis provides a Redis-backed settings store, for hosts that share
// the auto blocking toggle between several machines.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/example/focusguard/internal/ports/secondary"
)

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "focusguard"

// SettingsStore implements secondary.SettingsStore using Redis.
type SettingsStore struct {
	client *redis.Client
	prefix string
}

// NewSettingsStore creates a new store backed by Redis.
func NewSettingsStore(addr string, password string, db int) *SettingsStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &SettingsStore{client: rdb, prefix: DefaultKeyPrefix}
}

var _ secondary.SettingsStore = (*SettingsStore)(nil)

// WithKeyPrefix returns a copy of the store writing under prefix.
func (s *SettingsStore) WithKeyPrefix(prefix string) *SettingsStore {
	return &SettingsStore{client: s.client, prefix: prefix}
}

func (s *SettingsStore) key(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

// AutoBlockingEnabled returns the toggle; false when never set.
func (s *SettingsStore) AutoBlockingEnabled(ctx context.Context) (bool, error) {
	key := s.key("auto_blocking_enabled")
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for %s", value, key)
	}
	return enabled, nil
}

// SetAutoBlockingEnabled persists the toggle without expiry.
func (s *SettingsStore) SetAutoBlockingEnabled(ctx context.Context, enabled bool) error {
	key := s.key("auto_blocking_enabled")
	if err := s.client.Set(ctx, key, strconv.FormatBool(enabled), 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *SettingsStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *SettingsStore) Close() error {
	return s.client.Close()
}
