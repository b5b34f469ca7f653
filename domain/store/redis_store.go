package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the part of *redis.Client the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisStore stores page links in Redis as JSON arrays, so searches can share fetches.
type RedisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore initializes a Redis-backed LinkStore.
func NewRedisStore(addr, prefix string, ttl time.Duration) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), prefix, ttl)
}

func NewRedisStoreWithClient(client RedisClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Put(ctx context.Context, node string, links []string) error {
	if links == nil {
		links = []string{}
	}
	payload, err := json.Marshal(links)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+node, payload, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, node string) ([]string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+node).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var links []string
	if err := json.Unmarshal(val, &links); err != nil {
		return nil, false, err
	}
	return links, true, nil
}
