package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/infrastructure/config"
	"github.com/shadecraft/backend/internal/infrastructure/persistence"
	"github.com/shadecraft/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StoreFactory builds the configuration store and idempotency store selected
// by configuration and owns the connections it opens.
type StoreFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	redis   *redis.Client
	closers []func() error

	dialRedis func(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error)
}

// StoreFactoryOption configures a StoreFactory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithDatabase supplies the connection used by the database backend
func WithDatabase(db *gorm.DB) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.db = db
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg *config.Config, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cfg:       cfg,
		logger:    zap.NewNop(),
		dialRedis: NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ConfigurationStore returns the store for cfg.Store.Backend. When the
// backend cannot be reached and MemoryFallback is set, an in-memory store is
// returned with a warning.
func (f *StoreFactory) ConfigurationStore(ctx context.Context) (configurator.ConfigurationStore, error) {
	store, err := f.configurationStore(ctx)
	if err == nil {
		f.logger.Info("Configuration store ready", zap.String("backend", f.cfg.Store.Backend))
		return store, nil
	}
	if !f.cfg.Store.MemoryFallback {
		return nil, err
	}

	f.logger.Warn("Configuration store unavailable, falling back to in-memory store. "+
		"Saved configurations will not survive a restart.",
		zap.String("backend", f.cfg.Store.Backend),
		zap.Error(err),
	)
	return persistence.NewInMemoryConfigurationStore(), nil
}

func (f *StoreFactory) configurationStore(ctx context.Context) (configurator.ConfigurationStore, error) {
	switch f.cfg.Store.Backend {
	case "", config.StoreBackendMemory:
		return persistence.NewInMemoryConfigurationStore(), nil

	case config.StoreBackendDatabase:
		if f.db == nil {
			return nil, errors.New("database backend selected but no database connection was supplied")
		}
		store := persistence.NewGormConfigurationStore(f.db)
		if f.cfg.Database.Driver == "sqlite" {
			if err := store.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
			}
		}
		return store, nil

	case config.StoreBackendRedis:
		client, err := f.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return NewRedisConfigurationStore(client, ""), nil

	case config.StoreBackendS3:
		store, err := storage.NewS3ConfigurationStore(ctx, &f.cfg.Storage, storage.WithLogger(f.logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", f.cfg.Store.Backend)
	}
}

// IdempotencyStore shares keys through Redis when the redis backend is in use
// and keeps them in memory otherwise.
func (f *StoreFactory) IdempotencyStore(ctx context.Context) shared.IdempotencyStore {
	if f.cfg.Store.Backend == config.StoreBackendRedis {
		client, err := f.redisClient(ctx)
		if err == nil {
			return NewRedisIdempotencyStore(client, "")
		}
		f.logger.Warn("Redis unavailable, idempotency keys are kept per instance", zap.Error(err))
	}
	store := NewInMemoryIdempotencyStore(0)
	f.closers = append(f.closers, store.Close)
	return store
}

func (f *StoreFactory) redisClient(ctx context.Context) (*redis.Client, error) {
	if f.redis != nil {
		return f.redis, nil
	}
	client, err := f.dialRedis(ctx, f.cfg.Redis)
	if err != nil {
		return nil, err
	}
	f.redis = client
	f.closers = append(f.closers, client.Close)
	return client, nil
}

// Close releases every connection the factory opened
func (f *StoreFactory) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
