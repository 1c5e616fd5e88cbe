package configurator

import (
	"strings"
	"time"

	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// SavedConfiguration is a named snapshot of a configuration. The product is
// embedded in full so later display and repricing are stable against catalog drift.
type SavedConfiguration struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Product   catalog.Product `json:"product"`
	Options   OptionSelection `json:"options"`
	Width     decimal.Decimal `json:"width"`
	Height    decimal.Decimal `json:"height"`
	Quantity  int             `json:"quantity"`
}

// NewSavedConfiguration builds an unsaved record from a snapshot. The
// repository assigns ID and CreatedAt.
func NewSavedConfiguration(name string, snapshot ConfigurationSnapshot) SavedConfiguration {
	return SavedConfiguration{
		Name:     strings.TrimSpace(name),
		Product:  snapshot.Product.Clone(),
		Options:  snapshot.Options.Clone(),
		Width:    snapshot.WidthInches(),
		Height:   snapshot.HeightInches(),
		Quantity: snapshot.Quantity,
	}
}

// Validate checks the record before it is persisted
func (c *SavedConfiguration) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Configuration name cannot be empty")
	}
	if strings.TrimSpace(c.Product.ID) == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Configuration must reference a product")
	}
	if c.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if c.Width.IsNegative() || c.Height.IsNegative() {
		return shared.NewDomainError("INVALID_DIMENSION", "Dimensions cannot be negative")
	}
	return nil
}

// PricingContext builds the pricing input for the saved record
func (c *SavedConfiguration) PricingContext() strategy.PricingContext {
	return strategy.PricingContext{
		ProductID: c.Product.ID,
		BasePrice: c.Product.BasePrice,
		Width:     c.Width,
		Height:    c.Height,
		Options:   c.Options.Clone(),
	}
}

// ConfigurationPatch holds the fields of an update; nil fields are left as is
type ConfigurationPatch struct {
	Name     *string          `json:"name,omitempty"`
	Product  *catalog.Product `json:"product,omitempty"`
	Options  OptionSelection  `json:"options,omitempty"`
	Width    *decimal.Decimal `json:"width,omitempty"`
	Height   *decimal.Decimal `json:"height,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ConfigurationPatch) IsEmpty() bool {
	return p.Name == nil && p.Product == nil && p.Options == nil &&
		p.Width == nil && p.Height == nil && p.Quantity == nil
}

// Apply merges the patch into cfg and refreshes CreatedAt. Option keys are
// merged into the existing selection. Quantity below 1 becomes 1.
func (p ConfigurationPatch) Apply(cfg *SavedConfiguration, now time.Time) {
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			cfg.Name = name
		}
	}
	if p.Product != nil {
		cfg.Product = p.Product.Clone()
	}
	if p.Options != nil {
		merged := cfg.Options.Clone()
		for name, value := range p.Options {
			merged[name] = value
		}
		cfg.Options = merged
	}
	if p.Width != nil {
		cfg.Width = *p.Width
	}
	if p.Height != nil {
		cfg.Height = *p.Height
	}
	if p.Quantity != nil {
		q := *p.Quantity
		if q < 1 {
			q = 1
		}
		cfg.Quantity = q
	}
	cfg.CreatedAt = now
}
