package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// errCorruptCollection marks a stored collection that no longer decodes
var errCorruptCollection = errors.New("configuration collection is corrupt")

// KeyedConfigurationRepository keeps every saved configuration as one JSON
// array under a single store key. Read-modify-write cycles are serialised
// within the process.
type KeyedConfigurationRepository struct {
	mu      sync.Mutex
	store   configurator.ConfigurationStore
	key     string
	logger  *zap.Logger
	metrics *telemetry.ConfiguratorMetrics
	now     func() time.Time
	newID   func() string
}

// NewKeyedConfigurationRepository creates a repository over store. An empty key
// uses configurator.StorageKey.
func NewKeyedConfigurationRepository(store configurator.ConfigurationStore, key string, logger *zap.Logger) *KeyedConfigurationRepository {
	if key == "" {
		key = configurator.StorageKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyedConfigurationRepository{
		store:  store,
		key:    key,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// SetMetrics sets the metrics collector
func (r *KeyedConfigurationRepository) SetMetrics(m *telemetry.ConfiguratorMetrics) {
	r.metrics = m
}

// Save implements configurator.ConfigurationRepository
func (r *KeyedConfigurationRepository) Save(ctx context.Context, cfg configurator.SavedConfiguration) (*configurator.SavedConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}

	cfg.ID = r.newID()
	cfg.CreatedAt = r.now()
	cfg.Options = cfg.Options.Clone()
	records = append(records, cfg)

	if err := r.persist(ctx, "save", records); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List implements configurator.ConfigurationRepository
func (r *KeyedConfigurationRepository) List(ctx context.Context) []configurator.SavedConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadForRead(ctx)
}

// GetByID implements configurator.ConfigurationRepository
func (r *KeyedConfigurationRepository) GetByID(ctx context.Context, id string) (*configurator.SavedConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cfg := range r.loadForRead(ctx) {
		if cfg.ID == id {
			return &cfg, nil
		}
	}
	return nil, shared.ErrConfigurationMissing
}

// GetByProduct implements configurator.ConfigurationRepository
func (r *KeyedConfigurationRepository) GetByProduct(ctx context.Context, productID string) []configurator.SavedConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []configurator.SavedConfiguration{}
	for _, cfg := range r.loadForRead(ctx) {
		if cfg.Product.ID == productID {
			out = append(out, cfg)
		}
	}
	return out
}

// Update implements configurator.ConfigurationRepository
func (r *KeyedConfigurationRepository) Update(ctx context.Context, id string, patch configurator.ConfigurationPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadForWrite(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return false, nil
	}
	patch.Apply(&records[idx], r.now())

	if err := r.persist(ctx, "update", records); err != nil {
		return false, err
	}
	return true, nil
}

// Delete implements configurator.ConfigurationRepository
func (r *KeyedConfigurationRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadForWrite(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return false, nil
	}
	records = append(records[:idx], records[idx+1:]...)

	if err := r.persist(ctx, "delete", records); err != nil {
		return false, err
	}
	return true, nil
}

func indexOf(records []configurator.SavedConfiguration, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *KeyedConfigurationRepository) load(ctx context.Context) ([]configurator.SavedConfiguration, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, configurator.ErrStoreKeyNotFound) {
		return []configurator.SavedConfiguration{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []configurator.SavedConfiguration{}, nil
	}

	var records []configurator.SavedConfiguration
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptCollection, err)
	}
	if records == nil {
		records = []configurator.SavedConfiguration{}
	}
	return records, nil
}

// loadForRead never fails; problems are logged and read as an empty collection
func (r *KeyedConfigurationRepository) loadForRead(ctx context.Context) []configurator.SavedConfiguration {
	records, err := r.load(ctx)
	if err != nil {
		r.logger.Warn("Configuration store read failed, using empty collection",
			zap.String("key", r.key),
			zap.Error(err),
		)
		r.recordError(ctx, "read")
		return []configurator.SavedConfiguration{}
	}
	return records
}

// loadForWrite starts over from an empty collection when the stored one is
// corrupt, but refuses to write when the store itself is unreachable.
func (r *KeyedConfigurationRepository) loadForWrite(ctx context.Context) ([]configurator.SavedConfiguration, error) {
	records, err := r.load(ctx)
	if err == nil {
		return records, nil
	}
	r.recordError(ctx, "read")
	if errors.Is(err, errCorruptCollection) {
		r.logger.Warn("Discarding corrupt configuration collection",
			zap.String("key", r.key),
			zap.Error(err),
		)
		return []configurator.SavedConfiguration{}, nil
	}
	r.logger.Error("Configuration store unavailable", zap.String("key", r.key), zap.Error(err))
	return nil, errors.Join(shared.ErrStorageUnavailable, err)
}

func (r *KeyedConfigurationRepository) persist(ctx context.Context, op string, records []configurator.SavedConfiguration) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode configurations: %w", err)
	}
	if err := r.store.Put(ctx, r.key, raw); err != nil {
		r.recordError(ctx, op)
		return errors.Join(shared.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *KeyedConfigurationRepository) recordError(ctx context.Context, op string) {
	if r.metrics != nil {
		r.metrics.RecordStorageError(ctx, op)
	}
}
