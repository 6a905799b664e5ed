package redisstate

// Package redisstate provides a Redis-based state store for shared or
// server-side embedding of the storefront core.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed state store. Entries do not expire; the session
// lifecycle owns token validity, not the storage layer.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New creates a Redis state store with the default key prefix.
func New(client redis.UniversalClient) *Store {
	return &Store{
		client: client,
		prefix: "storefront:",
	}
}

// NewWithPrefix creates a Redis state store with a custom key prefix.
func NewWithPrefix(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Save writes the entry for key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}
	return s.client.Set(ctx, s.prefix+key, data, 0).Err()
}

// Get reads the entry for key. A missing entry returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("state key cannot be empty")
	}

	data, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return []byte(data), nil
}

// Delete removes the entry for key; deleting an absent entry is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+key).Err()
}
