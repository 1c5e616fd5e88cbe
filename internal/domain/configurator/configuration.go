package configurator

import (
	"strings"

	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Configuration is the in-progress state of the configurator for one product.
// It is not safe for concurrent use; callers serialise access.
type Configuration struct {
	product  catalog.Product
	width    Dimension
	height   Dimension
	options  OptionSelection
	quantity int
}

// NewConfiguration seeds a configuration from the product defaults:
// options from option defaults, both dimensions at the range minimum, quantity 1.
func NewConfiguration(product catalog.Product) *Configuration {
	p := product.Clone()
	p.ApplyDefaultRanges()
	return &Configuration{
		product:  p,
		width:    Dimension{Whole: p.WidthRange.Min, Fraction: FractionZero},
		height:   Dimension{Whole: p.HeightRange.Min, Fraction: FractionZero},
		options:  OptionSelection(p.DefaultSelections()),
		quantity: 1,
	}
}

// Product returns the product snapshot being configured
func (c *Configuration) Product() catalog.Product {
	return c.product
}

// Width returns the current width
func (c *Configuration) Width() Dimension {
	return c.width
}

// Height returns the current height
func (c *Configuration) Height() Dimension {
	return c.height
}

// Options returns a copy of the selected options
func (c *Configuration) Options() OptionSelection {
	return c.options.Clone()
}

// Quantity returns the current quantity
func (c *Configuration) Quantity() int {
	return c.quantity
}

// SetWidth sets the width from raw input. The fraction is checked first and an
// invalid fraction leaves the state unchanged.
func (c *Configuration) SetWidth(whole, fraction string) error {
	d, err := parseDimension(whole, fraction, c.product.WidthRange)
	if err != nil {
		return err
	}
	c.width = d
	return nil
}

// SetHeight sets the height from raw input, see SetWidth
func (c *Configuration) SetHeight(whole, fraction string) error {
	d, err := parseDimension(whole, fraction, c.product.HeightRange)
	if err != nil {
		return err
	}
	c.height = d
	return nil
}

// SetWidthInches sets the width from typed values, clamping whole
func (c *Configuration) SetWidthInches(whole int, fraction Fraction) error {
	if !fraction.IsValid() {
		return shared.ErrInvalidFraction
	}
	c.width = NewDimension(whole, fraction, c.product.WidthRange)
	return nil
}

// SetHeightInches sets the height from typed values, clamping whole
func (c *Configuration) SetHeightInches(whole int, fraction Fraction) error {
	if !fraction.IsValid() {
		return shared.ErrInvalidFraction
	}
	c.height = NewDimension(whole, fraction, c.product.HeightRange)
	return nil
}

// SetOption overwrites the selected value for name without validation
func (c *Configuration) SetOption(name, value string) {
	if c.options == nil {
		c.options = make(OptionSelection)
	}
	c.options[name] = value
}

// SetQuantity sets the quantity; values below 1 become 1
func (c *Configuration) SetQuantity(n int) {
	if n < 1 {
		n = 1
	}
	c.quantity = n
}

// Load restores a saved configuration. Dimensions snap to the nearest
// eighth and are clamped to the current product ranges.
func (c *Configuration) Load(saved SavedConfiguration) {
	p := saved.Product.Clone()
	p.ApplyDefaultRanges()
	c.product = p
	c.options = saved.Options.Clone()
	c.width = DimensionFromInches(saved.Width, p.WidthRange)
	c.height = DimensionFromInches(saved.Height, p.HeightRange)
	c.SetQuantity(saved.Quantity)
}

// Snapshot returns an immutable copy of the current state
func (c *Configuration) Snapshot() ConfigurationSnapshot {
	return ConfigurationSnapshot{
		Product:  c.product.Clone(),
		Width:    c.width,
		Height:   c.height,
		Options:  c.options.Clone(),
		Quantity: c.quantity,
	}
}

func parseDimension(whole, fraction string, r catalog.DimensionRange) (Dimension, error) {
	f, err := ParseFraction(fraction)
	if err != nil {
		return Dimension{}, err
	}
	return Dimension{Whole: ParseWhole(whole, r), Fraction: f}, nil
}

// ConfigurationSnapshot is a point-in-time copy of a configuration used for
// pricing, saving and comparison.
type ConfigurationSnapshot struct {
	Product  catalog.Product
	Width    Dimension
	Height   Dimension
	Options  OptionSelection
	Quantity int
}

// WidthInches returns the effective width in decimal inches
func (s ConfigurationSnapshot) WidthInches() decimal.Decimal {
	return s.Width.Inches()
}

// HeightInches returns the effective height in decimal inches
func (s ConfigurationSnapshot) HeightInches() decimal.Decimal {
	return s.Height.Inches()
}

// PricingContext builds the pricing input for the snapshot
func (s ConfigurationSnapshot) PricingContext() strategy.PricingContext {
	return strategy.PricingContext{
		ProductID: s.Product.ID,
		BasePrice: s.Product.BasePrice,
		Width:     s.WidthInches(),
		Height:    s.HeightInches(),
		Options:   s.Options.Clone(),
	}
}

// MissingOptions lists schema options that have no selected value
func (s ConfigurationSnapshot) MissingOptions() []string {
	return s.Product.MissingSelections(s.Options)
}

// ReadyForCheckout returns ErrIncompleteSelection naming the missing options
func (s ConfigurationSnapshot) ReadyForCheckout() error {
	missing := s.MissingOptions()
	if len(missing) == 0 {
		return nil
	}
	return shared.NewDomainError(
		shared.ErrIncompleteSelection.Code,
		"Please select: "+strings.Join(missing, ", "),
	)
}
