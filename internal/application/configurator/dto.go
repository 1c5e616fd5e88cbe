package configurator

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// WholeInches is a whole-inch input that accepts a JSON number or string.
// Non-numeric strings are kept as-is so the domain can resolve them to the minimum.
type WholeInches string

// UnmarshalJSON implements json.Unmarshaler
func (w *WholeInches) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = WholeInches(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*w = WholeInches(n.String())
	return nil
}

// QuoteRequest asks for a one-shot price
type QuoteRequest struct {
	ProductID string            `json:"product_id" binding:"required,max=100"`
	Width     decimal.Decimal   `json:"width"`
	Height    decimal.Decimal   `json:"height"`
	Options   map[string]string `json:"options"`
}

// QuoteResponse is a resolved price
type QuoteResponse struct {
	ProductID    string          `json:"product_id"`
	Width        decimal.Decimal `json:"width"`
	Height       decimal.Decimal `json:"height"`
	Price        decimal.Decimal `json:"price"`
	PriceSource  string          `json:"price_source"`
	AppliedRules []string        `json:"applied_rules"`
}

// StartSessionRequest starts a configurator session
type StartSessionRequest struct {
	ProductID string `json:"product_id" binding:"required,max=100"`
}

// DimensionRequest sets a width or height
type DimensionRequest struct {
	Whole    WholeInches `json:"whole"`
	Fraction string      `json:"fraction" binding:"omitempty,fraction"`
}

// OptionRequest sets one option value
type OptionRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Value string `json:"value" binding:"max=200"`
}

// QuantityRequest sets the quantity; values below 1 become 1
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SaveSessionRequest saves the live configuration under a name
type SaveSessionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// SaveConfigurationRequest saves a configuration directly
type SaveConfigurationRequest struct {
	Name      string            `json:"name" binding:"required,min=1,max=100"`
	ProductID string            `json:"product_id" binding:"required,max=100"`
	Options   map[string]string `json:"options"`
	Width     decimal.Decimal   `json:"width"`
	Height    decimal.Decimal   `json:"height"`
	Quantity  int               `json:"quantity"`
}

// UpdateConfigurationRequest merges fields into a saved configuration
type UpdateConfigurationRequest struct {
	Name      *string           `json:"name" binding:"omitempty,min=1,max=100"`
	ProductID *string           `json:"product_id" binding:"omitempty,max=100"`
	Options   map[string]string `json:"options"`
	Width     *decimal.Decimal  `json:"width"`
	Height    *decimal.Decimal  `json:"height"`
	Quantity  *int              `json:"quantity"`
}

// DimensionView renders a dimension
type DimensionView struct {
	Whole    int             `json:"whole"`
	Fraction string          `json:"fraction"`
	Label    string          `json:"label"`
	Inches   decimal.Decimal `json:"inches"`
}

func toDimensionView(d configurator.Dimension) DimensionView {
	return DimensionView{
		Whole:    d.Whole,
		Fraction: d.Fraction.String(),
		Label:    d.String(),
		Inches:   d.Inches(),
	}
}

// SessionView is the live state of a configurator session
type SessionView struct {
	ID             string                 `json:"id"`
	ProductID      string                 `json:"product_id"`
	ProductTitle   string                 `json:"product_title"`
	Width          DimensionView          `json:"width"`
	Height         DimensionView          `json:"height"`
	WidthRange     catalog.DimensionRange `json:"width_range"`
	HeightRange    catalog.DimensionRange `json:"height_range"`
	Options        map[string]string      `json:"options"`
	Quantity       int                    `json:"quantity"`
	Price          *decimal.Decimal       `json:"price"`
	Total          *decimal.Decimal       `json:"total"`
	PriceSource    string                 `json:"price_source,omitempty"`
	PriceSequence  uint64                 `json:"price_sequence"`
	MissingOptions []string               `json:"missing_options"`
	Comparing      []string               `json:"comparing"`
}

// ConfigurationResponse is a saved configuration with its local price
type ConfigurationResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Product   catalog.Product   `json:"product"`
	Options   map[string]string `json:"options"`
	Width     decimal.Decimal   `json:"width"`
	Height    decimal.Decimal   `json:"height"`
	Quantity  int               `json:"quantity"`
	Price     decimal.Decimal   `json:"price"`
	Total     decimal.Decimal   `json:"total"`
}

func toConfigurationResponse(cfg configurator.SavedConfiguration, local *strategy.LocalPricingStrategy) ConfigurationResponse {
	price := local.Price(cfg.PricingContext()).Price
	return ConfigurationResponse{
		ID:        cfg.ID,
		Name:      cfg.Name,
		CreatedAt: cfg.CreatedAt,
		Product:   cfg.Product,
		Options:   cfg.Options.Clone(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Quantity:  cfg.Quantity,
		Price:     price,
		Total:     configurator.LineTotal(price, cfg.Quantity),
	}
}

// ComparisonRowResponse is one column of the comparison table
type ComparisonRowResponse struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	Current      bool              `json:"current"`
	ProductID    string            `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	Width        decimal.Decimal   `json:"width"`
	Height       decimal.Decimal   `json:"height"`
	Options      map[string]string `json:"options"`
	Quantity     int               `json:"quantity"`
	Price        decimal.Decimal   `json:"price"`
	Total        decimal.Decimal   `json:"total"`
	PriceSource  string            `json:"price_source"`
}

// ComparisonResponse is the side-by-side comparison table
type ComparisonResponse struct {
	Rows        []ComparisonRowResponse `json:"rows"`
	OptionNames []string                `json:"option_names"`
	Missing     []string                `json:"missing,omitempty"`
}

func toComparisonResponse(cmp configurator.Comparison, missing []string) ComparisonResponse {
	rows := make([]ComparisonRowResponse, 0, len(cmp.Rows))
	for _, r := range cmp.Rows {
		rows = append(rows, ComparisonRowResponse{
			ID:           r.ID,
			Name:         r.Name,
			Current:      r.Current,
			ProductID:    r.ProductID,
			ProductTitle: r.ProductTitle,
			Width:        r.Width,
			Height:       r.Height,
			Options:      r.Options,
			Quantity:     r.Quantity,
			Price:        r.Price,
			Total:        r.Total,
			PriceSource:  r.PriceSource.String(),
		})
	}
	return ComparisonResponse{Rows: rows, OptionNames: cmp.OptionNames, Missing: missing}
}

func toQuoteResponse(pc strategy.PricingContext, result strategy.PricingResult) QuoteResponse {
	return QuoteResponse{
		ProductID:    pc.ProductID,
		Width:        pc.Width,
		Height:       pc.Height,
		Price:        result.Price,
		PriceSource:  result.Source.String(),
		AppliedRules: result.AppliedRules,
	}
}
