// Package cache provides Redis-backed short-lived stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateInfo records a pending OAuth handshake keyed by its state token.
type StateInfo struct {
	CreatedAt time.Time `json:"created_at"`
}

// ErrStateNotFound is returned when a state token is unknown, expired or
// already consumed.
var ErrStateNotFound = errors.New("state not found or expired")

// RedisStateStore holds pending handshake state tokens. Entries are
// one-time use: verification consumes the token atomically, so a replayed
// callback with a previously valid state is rejected.
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStateStore creates a new RedisStateStore instance.
// The prefix namespaces keys (e.g. "oauth:state:"); ttl should match the
// state cookie lifetime (10 minutes).
func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Set records a pending handshake. The key expires after the configured TTL.
func (s *RedisStateStore) Set(ctx context.Context, state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	data, err := json.Marshal(StateInfo{CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal state info: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+state, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store state in redis: %w", err)
	}
	return nil
}

// VerifyAndConsume checks the state exists and deletes it in one atomic
// GETDEL, enforcing one-time use.
func (s *RedisStateStore) VerifyAndConsume(ctx context.Context, state string) (*StateInfo, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	data, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to retrieve state from redis: %w", err)
	}

	var info StateInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state info: %w", err)
	}
	return &info, nil
}
