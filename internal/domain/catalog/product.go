package catalog

import (
	"context"
	"strings"

	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default whole-inch bounds applied when a product declares no range
const (
	DefaultMinInches = 12
	DefaultMaxInches = 96
)

// DimensionRange bounds the whole-inch part of a width or height
type DimensionRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Clamp returns whole limited to [Min, Max]
func (r DimensionRange) Clamp(whole int) int {
	if whole < r.Min {
		return r.Min
	}
	if whole > r.Max {
		return r.Max
	}
	return whole
}

// Contains reports whether whole lies within the range
func (r DimensionRange) Contains(whole int) bool {
	return whole >= r.Min && whole <= r.Max
}

// ProductOption is one configurable option of a product (Color, Control Type, ...)
type ProductOption struct {
	Name    string   `json:"name"`
	Values  []string `json:"values"`
	Default string   `json:"default,omitempty"`
}

// DefaultValue returns the declared default, or the first value
func (o ProductOption) DefaultValue() string {
	if o.Default != "" {
		return o.Default
	}
	if len(o.Values) > 0 {
		return o.Values[0]
	}
	return ""
}

// HasValue reports whether value is one of the option's declared values
func (o ProductOption) HasValue(value string) bool {
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Product is the catalog snapshot consumed by the configurator.
// It is denormalised into saved configurations, so it carries everything
// pricing and display need.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Options     []ProductOption `json:"options"`
	WidthRange  DimensionRange  `json:"width_range"`
	HeightRange DimensionRange  `json:"height_range"`
}

// Validate checks the product invariants
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(p.Title) == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product title cannot be empty")
	}
	if p.BasePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}
	for _, r := range []DimensionRange{p.WidthRange, p.HeightRange} {
		if r.Min < 1 {
			return shared.NewDomainError("INVALID_RANGE", "Dimension minimum must be at least 1 inch")
		}
		if r.Min > r.Max {
			return shared.NewDomainError("INVALID_RANGE", "Dimension minimum cannot exceed maximum")
		}
	}
	seen := make(map[string]struct{}, len(p.Options))
	for _, opt := range p.Options {
		if opt.Name == "" {
			return shared.NewDomainError("INVALID_OPTION", "Option name cannot be empty")
		}
		if _, dup := seen[opt.Name]; dup {
			return shared.NewDomainError("INVALID_OPTION", "Duplicate option: "+opt.Name)
		}
		seen[opt.Name] = struct{}{}
		if opt.Default != "" && !opt.HasValue(opt.Default) {
			return shared.NewDomainError("INVALID_OPTION", "Default value is not offered for option: "+opt.Name)
		}
	}
	return nil
}

// ApplyDefaultRanges fills in unset dimension ranges
func (p *Product) ApplyDefaultRanges() {
	if p.WidthRange == (DimensionRange{}) {
		p.WidthRange = DimensionRange{Min: DefaultMinInches, Max: DefaultMaxInches}
	}
	if p.HeightRange == (DimensionRange{}) {
		p.HeightRange = DimensionRange{Min: DefaultMinInches, Max: DefaultMaxInches}
	}
}

// Option returns the named option
func (p *Product) Option(name string) (ProductOption, bool) {
	for _, opt := range p.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return ProductOption{}, false
}

// OptionNames returns the option names in schema order
func (p *Product) OptionNames() []string {
	names := make([]string, 0, len(p.Options))
	for _, opt := range p.Options {
		names = append(names, opt.Name)
	}
	return names
}

// DefaultSelections returns the option-name -> value map seeded from defaults.
// Options with no values are left out.
func (p *Product) DefaultSelections() map[string]string {
	selections := make(map[string]string, len(p.Options))
	for _, opt := range p.Options {
		if v := opt.DefaultValue(); v != "" {
			selections[opt.Name] = v
		}
	}
	return selections
}

// MissingSelections lists schema options that have no selected value
func (p *Product) MissingSelections(selections map[string]string) []string {
	var missing []string
	for _, opt := range p.Options {
		if selections[opt.Name] == "" {
			missing = append(missing, opt.Name)
		}
	}
	return missing
}

// Clone returns a deep copy, used when snapshotting into saved configurations
func (p Product) Clone() Product {
	out := p
	out.Options = make([]ProductOption, len(p.Options))
	for i, opt := range p.Options {
		out.Options[i] = ProductOption{
			Name:    opt.Name,
			Values:  append([]string(nil), opt.Values...),
			Default: opt.Default,
		}
	}
	return out
}

// Catalog supplies product snapshots. The configurator never mutates it.
type Catalog interface {
	// FindByID returns shared.ErrNotFound when the product does not exist
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindAll returns every product in catalog order
	FindAll(ctx context.Context) ([]Product, error)
}
