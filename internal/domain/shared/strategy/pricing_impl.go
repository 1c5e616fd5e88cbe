package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Reference size and damping used by the local formula
var (
	// ReferenceArea is the 24x36 inch area that pays exactly the base price
	ReferenceArea = decimal.NewFromInt(24 * 36)
	// SizeDamping scales the area ratio down before it is floored at 1
	SizeDamping = decimal.RequireFromString("0.8")
)

// Surcharge is a fixed amount added when an option has an exact value
type Surcharge struct {
	Option string
	Value  string
	Amount decimal.Decimal
}

// Rule returns the applied-rule label for the surcharge
func (s Surcharge) Rule() string {
	return fmt.Sprintf("surcharge:%s=%s", s.Option, s.Value)
}

// DefaultSurcharges returns the standard option surcharges
func DefaultSurcharges() []Surcharge {
	return []Surcharge{
		{Option: "Control Type", Value: "Motorized", Amount: decimal.NewFromInt(75)},
		{Option: "Control Type", Value: "Cordless", Amount: decimal.NewFromInt(30)},
		{Option: "Light Blocker", Value: "Full Blackout Kit", Amount: decimal.NewFromInt(25)},
		{Option: "Light Blocker", Value: "Side Channels", Amount: decimal.NewFromInt(15)},
		{Option: "Valance Type", Value: "Deluxe", Amount: decimal.NewFromInt(18)},
	}
}

// LocalPricingStrategy computes prices with the deterministic size/surcharge formula.
// It never fails and performs no I/O.
type LocalPricingStrategy struct {
	BaseStrategy
	surcharges []Surcharge
}

// LocalPricingOption configures a LocalPricingStrategy
type LocalPricingOption func(*LocalPricingStrategy)

// WithSurcharges replaces the surcharge table
func WithSurcharges(surcharges []Surcharge) LocalPricingOption {
	return func(s *LocalPricingStrategy) {
		s.surcharges = append([]Surcharge(nil), surcharges...)
	}
}

// NewLocalPricingStrategy creates a new local pricing strategy
func NewLocalPricingStrategy(opts ...LocalPricingOption) *LocalPricingStrategy {
	s := &LocalPricingStrategy{
		BaseStrategy: NewBaseStrategy(
			"local",
			"Local pricing scales the base price by damped area and adds option surcharges",
		),
		surcharges: DefaultSurcharges(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Surcharges returns a copy of the surcharge table
func (s *LocalPricingStrategy) Surcharges() []Surcharge {
	return append([]Surcharge(nil), s.surcharges...)
}

// CalculatePrice implements PricingStrategy
func (s *LocalPricingStrategy) CalculatePrice(_ context.Context, pricingCtx PricingContext) (PricingResult, error) {
	return s.Price(pricingCtx), nil
}

// Price computes the local price synchronously
func (s *LocalPricingStrategy) Price(pricingCtx PricingContext) PricingResult {
	rules := []string{"base_price"}

	multiplier := SizeMultiplier(pricingCtx.Width, pricingCtx.Height)
	price := pricingCtx.BasePrice.Mul(multiplier)
	if multiplier.GreaterThan(decimal.NewFromInt(1)) {
		rules = append(rules, "size_multiplier")
	}

	for _, sc := range s.surcharges {
		if v, ok := pricingCtx.Options[sc.Option]; ok && v == sc.Value {
			price = price.Add(sc.Amount)
			rules = append(rules, sc.Rule())
		}
	}

	return PricingResult{
		Price:        price.Round(2),
		Source:       PriceSourceLocal,
		AppliedRules: rules,
	}
}

// SizeMultiplier returns max(1, (width*height)/(24*36) * 0.8)
func SizeMultiplier(width, height decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	ratio := width.Mul(height).Div(ReferenceArea).Mul(SizeDamping)
	if ratio.LessThan(one) {
		return one
	}
	return ratio
}

// FallbackHook is invoked when the resilient strategy falls back
type FallbackHook func(ctx context.Context, pricingCtx PricingContext, cause error)

// ResilientPricingStrategy tries the primary strategy and falls back on failure.
// Context cancellation is returned unchanged since the request was superseded.
type ResilientPricingStrategy struct {
	BaseStrategy
	Primary    PricingStrategy
	Fallback   PricingStrategy
	onFallback FallbackHook
}

// NewResilientPricingStrategy creates a resilient strategy; a nil fallback uses local pricing
func NewResilientPricingStrategy(primary, fallback PricingStrategy, onFallback FallbackHook) *ResilientPricingStrategy {
	if fallback == nil {
		fallback = NewLocalPricingStrategy()
	}
	return &ResilientPricingStrategy{
		BaseStrategy: NewBaseStrategy(
			"resilient",
			"Resilient pricing uses remote pricing and falls back to the local formula",
		),
		Primary:    primary,
		Fallback:   fallback,
		onFallback: onFallback,
	}
}

// WithFallbackHook returns a copy of s that reports fallbacks to hook
func (s *ResilientPricingStrategy) WithFallbackHook(hook FallbackHook) *ResilientPricingStrategy {
	out := *s
	out.onFallback = hook
	return &out
}

// CalculatePrice implements PricingStrategy
func (s *ResilientPricingStrategy) CalculatePrice(ctx context.Context, pricingCtx PricingContext) (PricingResult, error) {
	if s.Primary != nil {
		result, err := s.Primary.CalculatePrice(ctx, pricingCtx)
		if err == nil {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return PricingResult{}, ctxErr
		}
		if errors.Is(err, context.Canceled) {
			return PricingResult{}, err
		}
		if s.onFallback != nil {
			s.onFallback(ctx, pricingCtx, err)
		}
	}

	result, err := s.Fallback.CalculatePrice(ctx, pricingCtx)
	if err != nil {
		return PricingResult{}, err
	}
	if s.Primary != nil {
		result.AppliedRules = append(result.AppliedRules, "fallback")
	}
	return result, nil
}
