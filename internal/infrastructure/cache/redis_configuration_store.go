package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/infrastructure/config"
)

var _ configurator.ConfigurationStore = (*RedisConfigurationStore)(nil)

// DefaultConfigurationPrefix namespaces configuration keys in Redis
const DefaultConfigurationPrefix = "shade:store:"

// RedisConfigurationStore keeps configuration blobs as plain Redis strings
// without expiry.
type RedisConfigurationStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisConfigurationStore creates a store over client
func NewRedisConfigurationStore(client redis.Cmdable, keyPrefix string) *RedisConfigurationStore {
	if keyPrefix == "" {
		keyPrefix = DefaultConfigurationPrefix
	}
	return &RedisConfigurationStore{client: client, keyPrefix: keyPrefix}
}

// Get implements configurator.ConfigurationStore
func (s *RedisConfigurationStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, configurator.ErrStoreKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Put implements configurator.ConfigurationStore
func (s *RedisConfigurationStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// NewRedisClient opens a client and verifies it with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
