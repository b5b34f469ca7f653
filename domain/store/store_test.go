package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiPathfinder/domain/store"
)

// fakeRedis keeps values in a map and answers with the go-redis command types.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	val, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Close() error { return nil }

func testLinkStore(t *testing.T, s store.LinkStore) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "https://en.wikipedia.org/wiki/A")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "https://en.wikipedia.org/wiki/A", []string{"https://en.wikipedia.org/wiki/B"}))
	links, ok, err := s.Get(ctx, "https://en.wikipedia.org/wiki/A")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/B"}, links)

	require.NoError(t, s.Put(ctx, "https://en.wikipedia.org/wiki/Empty", nil))
	links, ok, err = s.Get(ctx, "https://en.wikipedia.org/wiki/Empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, links)
}

func TestMemoryStore(t *testing.T) {
	testLinkStore(t, store.NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	t.Run("round trips links", func(t *testing.T) {
		testLinkStore(t, store.NewRedisStoreWithClient(newFakeRedis(), "links:", time.Hour))
	})
	t.Run("keys are prefixed and expire", func(t *testing.T) {
		fake := newFakeRedis()
		s := store.NewRedisStoreWithClient(fake, "links:", time.Hour)

		require.NoError(t, s.Put(context.Background(), "A", []string{"B"}))
		assert.Equal(t, `["B"]`, fake.data["links:A"])
		assert.Equal(t, time.Hour, fake.ttls["links:A"])
	})
	t.Run("surfaces redis errors", func(t *testing.T) {
		fake := newFakeRedis()
		fake.err = errors.New("connection refused")
		s := store.NewRedisStoreWithClient(fake, "links:", time.Hour)

		_, _, err := s.Get(context.Background(), "A")
		assert.Error(t, err)
		assert.Error(t, s.Put(context.Background(), "A", nil))
	})
}
