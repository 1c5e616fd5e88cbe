package configurator

import (
	"context"
	"errors"

	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ComparisonService builds side-by-side comparison tables
type ComparisonService struct {
	repo    configurator.ConfigurationRepository
	pricing *PricingService
	logger  *zap.Logger
}

// NewComparisonService creates a new ComparisonService
func NewComparisonService(repo configurator.ConfigurationRepository, pricing *PricingService, logger *zap.Logger) *ComparisonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComparisonService{repo: repo, pricing: pricing, logger: logger}
}

// Build returns the table for the current entry and the selected ids.
// Ids that no longer resolve are skipped and reported in Missing.
func (s *ComparisonService) Build(ctx context.Context, current configurator.CurrentEntry, ids []string) ComparisonResponse {
	saved := make([]configurator.SavedConfiguration, 0, len(ids))
	var missing []string
	for _, id := range ids {
		cfg, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, shared.ErrConfigurationMissing) {
				s.logger.Warn("Comparison lookup failed", zap.String("configuration_id", id), zap.Error(err))
			}
			missing = append(missing, id)
			continue
		}
		saved = append(saved, *cfg)
	}

	cmp := configurator.BuildComparison(current, saved, s.pricing.Local())
	return toComparisonResponse(cmp, missing)
}
