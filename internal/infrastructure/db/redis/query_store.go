package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryStore is the shared query value store backed by Redis. It lets gateway
// replicas reuse each other's resolved session values instead of repeating
// the same upstream fetch. Keys mirror the in-process query keys under a
// "query:" prefix.
type QueryStore struct {
	client *redis.Client
}

// NewQueryStore creates a QueryStore wrapping the given Redis client.
func NewQueryStore(client *redis.Client) *QueryStore {
	return &QueryStore{client: client}
}

// Get returns the stored payload for key, with ok=false on a miss.
func (s *QueryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Set stores payload under key with the given TTL.
func (s *QueryStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), payload, ttl).Err()
}

// DeletePrefix removes every key under prefix. Used by logout to reset the
// session's keyspace across all replicas.
func (s *QueryStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *QueryStore) key(k string) string {
	return "query:" + k
}
