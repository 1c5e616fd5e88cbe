package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceSource identifies which strategy produced a price
type PriceSource string

const (
	PriceSourceRemote PriceSource = "remote"
	PriceSourceLocal  PriceSource = "local"
)

// String returns the string representation of the price source
func (s PriceSource) String() string {
	return string(s)
}

// PricingContext provides context for pricing calculation.
// Width and Height are decimal inches (whole + fraction).
type PricingContext struct {
	ProductID string
	BasePrice decimal.Decimal
	Width     decimal.Decimal
	Height    decimal.Decimal
	Options   map[string]string
}

// PricingResult contains the result of pricing calculation
type PricingResult struct {
	Price        decimal.Decimal
	Source       PriceSource
	AppliedRules []string
}

// PricingStrategy defines the interface for pricing calculation
type PricingStrategy interface {
	Strategy
	// CalculatePrice calculates the price for a configured product
	CalculatePrice(ctx context.Context, pricingCtx PricingContext) (PricingResult, error)
}

// ErrPricingUnavailable is the typed failure that triggers the local fallback
var ErrPricingUnavailable = shared.ErrPricingUnavailable

// PricingUnavailableError wraps the transport or payload failure behind ErrPricingUnavailable
type PricingUnavailableError struct {
	Cause error
}

// NewPricingUnavailableError creates a PricingUnavailableError
func NewPricingUnavailableError(cause error) *PricingUnavailableError {
	return &PricingUnavailableError{Cause: cause}
}

// Error implements the error interface
func (e *PricingUnavailableError) Error() string {
	if e.Cause == nil {
		return "pricing unavailable"
	}
	return fmt.Sprintf("pricing unavailable: %v", e.Cause)
}

// Unwrap exposes the cause
func (e *PricingUnavailableError) Unwrap() error {
	return e.Cause
}

// Is matches ErrPricingUnavailable
func (e *PricingUnavailableError) Is(target error) bool {
	return errors.Is(ErrPricingUnavailable, target)
}
