package configurator

import (
	"context"
	"strings"

	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ConfigurationService manages saved configurations
type ConfigurationService struct {
	repo    configurator.ConfigurationRepository
	catalog catalog.Catalog
	pricing *PricingService
	logger  *zap.Logger
	metrics *telemetry.ConfiguratorMetrics
}

// NewConfigurationService creates a new ConfigurationService
func NewConfigurationService(
	repo configurator.ConfigurationRepository,
	productCatalog catalog.Catalog,
	pricing *PricingService,
	logger *zap.Logger,
) *ConfigurationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{
		repo:    repo,
		catalog: productCatalog,
		pricing: pricing,
		logger:  logger,
	}
}

// SetMetrics sets the metrics collector
func (s *ConfigurationService) SetMetrics(m *telemetry.ConfiguratorMetrics) {
	s.metrics = m
}

// Save stores a configuration for a catalog product. Width, height and
// options are stored exactly as given.
func (s *ConfigurationService) Save(ctx context.Context, req SaveConfigurationRequest) (*ConfigurationResponse, error) {
	if !req.Width.IsPositive() || !req.Height.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DIMENSION", "Width and height must be positive")
	}
	product, err := s.catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	cfg := configurator.SavedConfiguration{
		Name:     strings.TrimSpace(req.Name),
		Product:  product.Clone(),
		Options:  configurator.OptionSelection(req.Options).Clone(),
		Width:    req.Width,
		Height:   req.Height,
		Quantity: quantity,
	}
	return s.save(ctx, cfg)
}

// SaveSnapshot stores the live configuration of a session
func (s *ConfigurationService) SaveSnapshot(ctx context.Context, name string, snapshot configurator.ConfigurationSnapshot) (*ConfigurationResponse, error) {
	return s.save(ctx, configurator.NewSavedConfiguration(name, snapshot))
}

func (s *ConfigurationService) save(ctx context.Context, cfg configurator.SavedConfiguration) (*ConfigurationResponse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, cfg)
	if err != nil {
		s.logStorageError("save", err)
		return nil, err
	}

	s.logger.Info("Configuration saved",
		zap.String("configuration_id", saved.ID),
		zap.String("product_id", saved.Product.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordConfigurationSaved(ctx, saved.Product.ID)
	}
	resp := toConfigurationResponse(*saved, s.pricing.Local())
	return &resp, nil
}

// List returns saved configurations, optionally only those for productID
func (s *ConfigurationService) List(ctx context.Context, productID string) []ConfigurationResponse {
	var configs []configurator.SavedConfiguration
	if productID != "" {
		configs = s.repo.GetByProduct(ctx, productID)
	} else {
		configs = s.repo.List(ctx)
	}

	out := make([]ConfigurationResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, toConfigurationResponse(cfg, s.pricing.Local()))
	}
	return out
}

// Get returns one saved configuration
func (s *ConfigurationService) Get(ctx context.Context, id string) (*ConfigurationResponse, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toConfigurationResponse(*cfg, s.pricing.Local())
	return &resp, nil
}

// Find returns the domain record for id
func (s *ConfigurationService) Find(ctx context.Context, id string) (*configurator.SavedConfiguration, error) {
	return s.repo.GetByID(ctx, id)
}

// Update merges req into the saved configuration and refreshes its timestamp
func (s *ConfigurationService) Update(ctx context.Context, id string, req UpdateConfigurationRequest) (*ConfigurationResponse, error) {
	patch := configurator.ConfigurationPatch{
		Name:     req.Name,
		Width:    req.Width,
		Height:   req.Height,
		Quantity: req.Quantity,
	}
	if req.Options != nil {
		patch.Options = configurator.OptionSelection(req.Options)
	}
	if req.Width != nil && !req.Width.IsPositive() || req.Height != nil && !req.Height.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DIMENSION", "Width and height must be positive")
	}
	if req.ProductID != nil {
		product, err := s.catalog.FindByID(ctx, *req.ProductID)
		if err != nil {
			return nil, err
		}
		p := product.Clone()
		patch.Product = &p
	}

	ok, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logStorageError("update", err)
		return nil, err
	}
	if !ok {
		return nil, shared.ErrConfigurationMissing
	}
	return s.Get(ctx, id)
}

// Delete removes a saved configuration
func (s *ConfigurationService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logStorageError("delete", err)
		return err
	}
	if !ok {
		return shared.ErrConfigurationMissing
	}
	s.logger.Info("Configuration deleted", zap.String("configuration_id", id))
	return nil
}

func (s *ConfigurationService) logStorageError(op string, err error) {
	s.logger.Error("Configuration store write failed", zap.String("operation", op), zap.Error(err))
}
