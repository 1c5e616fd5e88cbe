package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the stores use. Any other
// command panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = "1"
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisConfigurationStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisConfigurationStore(client, "")

	_, err := store.Get(ctx, configurator.StorageKey)
	assert.ErrorIs(t, err, configurator.ErrStoreKeyNotFound)

	require.NoError(t, store.Put(ctx, configurator.StorageKey, []byte(`[]`)))
	assert.Equal(t, `[]`, client.data["shade:store:shade_configurations"])
	assert.Equal(t, time.Duration(0), client.ttls["shade:store:shade_configurations"])

	got, err := store.Get(ctx, configurator.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	client.err = errors.New("READONLY You can't write against a read only replica")
	_, err = store.Get(ctx, configurator.StorageKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, configurator.ErrStoreKeyNotFound)
	assert.Error(t, store.Put(ctx, configurator.StorageKey, []byte(`[]`)))
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisIdempotencyStore(client, "test:")

	ok, err := store.Claim(ctx, "cart:s:k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, client.ttls["test:cart:s:k"])

	ok, err = store.Claim(ctx, "cart:s:k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "cart:s:k"))
	ok, _ = store.Claim(ctx, "cart:s:k", time.Hour)
	assert.True(t, ok)

	client.err = errors.New("connection refused")
	_, err = store.Claim(ctx, "other", time.Hour)
	assert.Error(t, err)
	assert.Error(t, store.Release(ctx, "other"))
	assert.NoError(t, store.Close())
}
