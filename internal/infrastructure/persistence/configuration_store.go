package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConfigurationStore keeps configuration blobs in the configuration_store table
type GormConfigurationStore struct {
	db *gorm.DB
}

// NewGormConfigurationStore creates a new GormConfigurationStore
func NewGormConfigurationStore(db *gorm.DB) *GormConfigurationStore {
	return &GormConfigurationStore{db: db}
}

// AutoMigrate creates the table when migrations are not used (sqlite, tests)
func (s *GormConfigurationStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.ConfigurationStoreEntry{})
}

// Get implements configurator.ConfigurationStore
func (s *GormConfigurationStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.ConfigurationStoreEntry
	err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, configurator.ErrStoreKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("configuration store get %q: %w", key, err)
	}
	return entry.Value, nil
}

// Put implements configurator.ConfigurationStore with an upsert
func (s *GormConfigurationStore) Put(ctx context.Context, key string, value []byte) error {
	entry := models.ConfigurationStoreEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("configuration store put %q: %w", key, err)
	}
	return nil
}

// InMemoryConfigurationStore is a process-local store for development and tests
type InMemoryConfigurationStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryConfigurationStore creates an empty in-memory store
func NewInMemoryConfigurationStore() *InMemoryConfigurationStore {
	return &InMemoryConfigurationStore{data: make(map[string][]byte)}
}

// Get implements configurator.ConfigurationStore
func (s *InMemoryConfigurationStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, configurator.ErrStoreKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements configurator.ConfigurationStore
func (s *InMemoryConfigurationStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}
