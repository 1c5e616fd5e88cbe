package strategy

import (
	"fmt"

	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"go.uber.org/zap"
)

// Registered pricing strategy names
const (
	PricingLocal     = "local"
	PricingRemote    = "remote"
	PricingResilient = "resilient"
)

// RegistryOption configures NewPricingRegistry
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger *zap.Logger
}

// WithRegistryLogger logs registry decisions, such as an overridden default
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// NewPricingRegistry registers the local formula and, when remote is non-nil,
// the remote client plus a resilient strategy wrapping both. The resilient
// strategy becomes the default whenever remote pricing is configured, and a
// different defaultName is logged as overridden. Otherwise defaultName
// selects the default.
func NewPricingRegistry(local *strategy.LocalPricingStrategy, remote strategy.PricingStrategy, defaultName string, opts ...RegistryOption) (*PricingRegistry, error) {
	o := registryOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if local == nil {
		local = strategy.NewLocalPricingStrategy()
	}
	r := NewRegistry()

	if err := r.Register(local); err != nil {
		return nil, err
	}

	if remote != nil {
		if err := r.Register(remote); err != nil {
			return nil, err
		}
		resilient := strategy.NewResilientPricingStrategy(remote, local, nil)
		if err := r.Register(resilient); err != nil {
			return nil, err
		}
		if defaultName != "" && defaultName != resilient.Name() {
			o.logger.Warn("Configured pricing strategy overridden by remote pricing",
				zap.String("configured", defaultName),
				zap.String("strategy", resilient.Name()),
			)
		}
		defaultName = resilient.Name()
	}

	if defaultName == "" {
		defaultName = local.Name()
	}
	if err := r.SetDefault(defaultName); err != nil {
		return nil, fmt.Errorf("%w: pricing.strategy %q is not available", shared.ErrInvalidInput, defaultName)
	}
	return r, nil
}

// DefaultStrategy returns the strategy quotes are priced with
func (r *PricingRegistry) DefaultStrategy() strategy.PricingStrategy {
	s, err := r.Get("")
	if err != nil {
		return nil
	}
	return s
}
