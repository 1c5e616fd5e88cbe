package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shadecraft/backend/internal/infrastructure/config"
	"github.com/shadecraft/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func failingDial(context.Context, config.RedisConfig) (*redis.Client, error) {
	return nil, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func TestStoreFactory_Memory(t *testing.T) {
	f := NewStoreFactory(&config.Config{Store: config.StoreConfig{Backend: config.StoreBackendMemory}})
	defer f.Close()

	store, err := f.ConfigurationStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &persistence.InMemoryConfigurationStore{}, store)
}

func TestStoreFactory_Database(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a connection", func(t *testing.T) {
		f := NewStoreFactory(&config.Config{Store: config.StoreConfig{Backend: config.StoreBackendDatabase}})
		_, err := f.ConfigurationStore(ctx)
		assert.Error(t, err)
	})

	t.Run("sqlite is migrated on the fly", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		require.NoError(t, err)
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
		defer sqlDB.Close()

		f := NewStoreFactory(&config.Config{
			Database: config.DatabaseConfig{Driver: "sqlite"},
			Store:    config.StoreConfig{Backend: config.StoreBackendDatabase},
		}, WithDatabase(db))

		store, err := f.ConfigurationStore(ctx)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "k", []byte("v")))
	})
}

func TestStoreFactory_RedisFallback(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreBackendRedis}}

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		f := NewStoreFactory(cfg)
		f.dialRedis = failingDial

		_, err := f.ConfigurationStore(ctx)
		assert.Error(t, err)
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		withFallback := *cfg
		withFallback.Store.MemoryFallback = true
		core, logs := observer.New(zap.WarnLevel)
		f := NewStoreFactory(&withFallback, WithLogger(zap.New(core)))
		f.dialRedis = failingDial
		defer f.Close()

		store, err := f.ConfigurationStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &persistence.InMemoryConfigurationStore{}, store)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back to in-memory store").Len())

		idem := f.IdempotencyStore(ctx)
		assert.IsType(t, &InMemoryIdempotencyStore{}, idem)
	})
}

func TestStoreFactory_S3RequiresBucket(t *testing.T) {
	f := NewStoreFactory(&config.Config{Store: config.StoreConfig{Backend: config.StoreBackendS3}})
	_, err := f.ConfigurationStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestStoreFactory_UnknownBackend(t *testing.T) {
	f := NewStoreFactory(&config.Config{Store: config.StoreConfig{Backend: "etcd"}})
	_, err := f.ConfigurationStore(context.Background())
	assert.Error(t, err)
}

func TestStoreFactory_CloseReleasesIdempotencyStore(t *testing.T) {
	f := NewStoreFactory(&config.Config{})
	_ = f.IdempotencyStore(context.Background())
	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
}
