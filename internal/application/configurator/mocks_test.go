package configurator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProduct() catalog.Product {
	return catalog.Product{
		ID:          "cellular-shade",
		Title:       "Cordless Cellular Shade",
		BasePrice:   dec("129.99"),
		WidthRange:  catalog.DimensionRange{Min: 12, Max: 96},
		HeightRange: catalog.DimensionRange{Min: 12, Max: 108},
		Options: []catalog.ProductOption{
			{Name: "Color", Values: []string{"White", "Linen", "Graphite"}},
			{Name: "Control Type", Values: []string{"Corded", "Cordless", "Motorized"}, Default: "Corded"},
			{Name: "Light Blocker", Values: []string{"None", "Side Channels", "Full Blackout Kit"}},
		},
	}
}

// MockCatalog is a mock implementation of catalog.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalog) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func newCatalogWith(products ...catalog.Product) *MockCatalog {
	m := new(MockCatalog)
	for i := range products {
		p := products[i]
		m.On("FindByID", mock.Anything, p.ID).Return(&p, nil)
	}
	m.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	return m
}

// MockConfigurationRepository is a mock implementation of ConfigurationRepository
type MockConfigurationRepository struct {
	mock.Mock
}

func (m *MockConfigurationRepository) Save(ctx context.Context, cfg configurator.SavedConfiguration) (*configurator.SavedConfiguration, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configurator.SavedConfiguration), args.Error(1)
}

func (m *MockConfigurationRepository) List(ctx context.Context) []configurator.SavedConfiguration {
	args := m.Called(ctx)
	return args.Get(0).([]configurator.SavedConfiguration)
}

func (m *MockConfigurationRepository) GetByID(ctx context.Context, id string) (*configurator.SavedConfiguration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*configurator.SavedConfiguration), args.Error(1)
}

func (m *MockConfigurationRepository) GetByProduct(ctx context.Context, productID string) []configurator.SavedConfiguration {
	args := m.Called(ctx, productID)
	return args.Get(0).([]configurator.SavedConfiguration)
}

func (m *MockConfigurationRepository) Update(ctx context.Context, id string, patch configurator.ConfigurationPatch) (bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockConfigurationRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// memoryRepository is a working in-memory repository for flow tests
type memoryRepository struct {
	mu      sync.Mutex
	records []configurator.SavedConfiguration
}

func (r *memoryRepository) Save(_ context.Context, cfg configurator.SavedConfiguration) (*configurator.SavedConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg.ID = uuid.New().String()
	cfg.CreatedAt = time.Now().UTC()
	r.records = append(r.records, cfg)
	return &cfg, nil
}

func (r *memoryRepository) List(context.Context) []configurator.SavedConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]configurator.SavedConfiguration(nil), r.records...)
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*configurator.SavedConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range r.records {
		if cfg.ID == id {
			return &cfg, nil
		}
	}
	return nil, shared.ErrConfigurationMissing
}

func (r *memoryRepository) GetByProduct(_ context.Context, productID string) []configurator.SavedConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []configurator.SavedConfiguration
	for _, cfg := range r.records {
		if cfg.Product.ID == productID {
			out = append(out, cfg)
		}
	}
	return out
}

func (r *memoryRepository) Update(_ context.Context, id string, patch configurator.ConfigurationPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			patch.Apply(&r.records[i], time.Now().UTC())
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// MockCart is a mock implementation of configurator.Cart
type MockCart struct {
	mock.Mock
}

func (m *MockCart) Add(ctx context.Context, item configurator.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockPricingStrategy is a mock remote pricing strategy
type MockPricingStrategy struct {
	strategy.BaseStrategy
	mock.Mock
}

func newMockPricingStrategy() *MockPricingStrategy {
	return &MockPricingStrategy{
		BaseStrategy: strategy.NewBaseStrategy("remote", "mock remote"),
	}
}

func (m *MockPricingStrategy) CalculatePrice(ctx context.Context, pc strategy.PricingContext) (strategy.PricingResult, error) {
	args := m.Called(ctx, pc)
	return args.Get(0).(strategy.PricingResult), args.Error(1)
}

// funcPricingStrategy delegates to a function, for timing-sensitive tests
type funcPricingStrategy struct {
	strategy.BaseStrategy
	fn func(ctx context.Context, pc strategy.PricingContext) (strategy.PricingResult, error)
}

func newFuncPricingStrategy(fn func(ctx context.Context, pc strategy.PricingContext) (strategy.PricingResult, error)) *funcPricingStrategy {
	return &funcPricingStrategy{
		BaseStrategy: strategy.NewBaseStrategy("remote", "func remote"),
		fn:           fn,
	}
}

func (f *funcPricingStrategy) CalculatePrice(ctx context.Context, pc strategy.PricingContext) (strategy.PricingResult, error) {
	return f.fn(ctx, pc)
}

// mapIdempotencyStore is a non-expiring IdempotencyStore
type mapIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMapIdempotencyStore() *mapIdempotencyStore {
	return &mapIdempotencyStore{keys: map[string]bool{}}
}

func (m *mapIdempotencyStore) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mapIdempotencyStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *mapIdempotencyStore) Close() error { return nil }
