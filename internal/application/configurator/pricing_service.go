package configurator

import (
	"context"
	"errors"

	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PricingService resolves prices: remote first, then the local formula.
// Fallbacks are logged and counted, never returned to the caller.
type PricingService struct {
	catalog  catalog.Catalog
	local    *strategy.LocalPricingStrategy
	resolver strategy.PricingStrategy
	logger   *zap.Logger
	metrics  *telemetry.ConfiguratorMetrics
}

// NewPricingService creates a PricingService. A nil remote strategy prices
// everything locally.
func NewPricingService(
	productCatalog catalog.Catalog,
	remote strategy.PricingStrategy,
	local *strategy.LocalPricingStrategy,
	logger *zap.Logger,
) *PricingService {
	if local == nil {
		local = strategy.NewLocalPricingStrategy()
	}
	var resolver strategy.PricingStrategy
	if remote != nil {
		resolver = strategy.NewResilientPricingStrategy(remote, local, nil)
	}
	return NewPricingServiceWithStrategy(productCatalog, resolver, local, logger)
}

// NewPricingServiceWithStrategy prices through resolver, usually the
// registry's default strategy. A resilient resolver reports its fallbacks
// to the service log and metrics. A nil resolver prices locally.
func NewPricingServiceWithStrategy(
	productCatalog catalog.Catalog,
	resolver strategy.PricingStrategy,
	local *strategy.LocalPricingStrategy,
	logger *zap.Logger,
) *PricingService {
	if local == nil {
		local = strategy.NewLocalPricingStrategy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PricingService{
		catalog: productCatalog,
		local:   local,
		logger:  logger,
	}
	switch r := resolver.(type) {
	case nil:
		s.resolver = local
	case *strategy.ResilientPricingStrategy:
		s.resolver = r.WithFallbackHook(s.onFallback)
	default:
		s.resolver = r
	}
	return s
}

// SetMetrics sets the metrics collector
func (s *PricingService) SetMetrics(m *telemetry.ConfiguratorMetrics) {
	s.metrics = m
}

// Local returns the local formula used for comparisons and saved records
func (s *PricingService) Local() *strategy.LocalPricingStrategy {
	return s.local
}

// Quote prices a snapshot. The only error is context cancellation of a
// superseded request.
func (s *PricingService) Quote(ctx context.Context, snapshot configurator.ConfigurationSnapshot) (strategy.PricingResult, error) {
	return s.quote(ctx, snapshot.PricingContext())
}

// LocalQuote prices a snapshot with the local formula only
func (s *PricingService) LocalQuote(snapshot configurator.ConfigurationSnapshot) strategy.PricingResult {
	return s.local.Price(snapshot.PricingContext())
}

// QuoteProduct prices raw dimensions and options for a catalog product
func (s *PricingService) QuoteProduct(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if !req.Width.IsPositive() || !req.Height.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DIMENSION", "Width and height must be positive")
	}
	product, err := s.catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	pc := strategy.PricingContext{
		ProductID: product.ID,
		BasePrice: product.BasePrice,
		Width:     req.Width,
		Height:    req.Height,
		Options:   configurator.OptionSelection(req.Options).Clone(),
	}
	result, err := s.quote(ctx, pc)
	if err != nil {
		return nil, err
	}
	resp := toQuoteResponse(pc, result)
	return &resp, nil
}

func (s *PricingService) quote(ctx context.Context, pc strategy.PricingContext) (strategy.PricingResult, error) {
	result, err := s.resolver.CalculatePrice(ctx, pc)
	if err != nil {
		return strategy.PricingResult{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordQuote(ctx, pc.ProductID, result.Source.String())
	}
	return result, nil
}

func (s *PricingService) onFallback(ctx context.Context, pc strategy.PricingContext, cause error) {
	reason := "unavailable"
	if !errors.Is(cause, strategy.ErrPricingUnavailable) {
		reason = "error"
	}
	s.logger.Warn("Remote pricing failed, using local formula",
		zap.String("product_id", pc.ProductID),
		zap.String("width", pc.Width.String()),
		zap.String("height", pc.Height.String()),
		zap.String("reason", reason),
		zap.Error(cause),
	)
	if s.metrics != nil {
		s.metrics.RecordFallback(ctx, pc.ProductID, reason)
	}
}
