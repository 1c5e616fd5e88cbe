package configurator

import (
	"sort"

	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// MaxComparisons is how many saved configurations can sit beside the current one
const MaxComparisons = 3

// CurrentConfigurationName labels the live row of a comparison
const CurrentConfigurationName = "Current Configuration"

// ComparisonSelection is the ordered set of saved configuration IDs picked for comparison
type ComparisonSelection struct {
	ids []string
}

// Select adds id. A fourth distinct id is rejected with ErrComparisonLimit and
// leaves the selection unchanged. Selecting an id twice is a no-op.
func (s *ComparisonSelection) Select(id string) error {
	if s.Contains(id) {
		return nil
	}
	if len(s.ids) >= MaxComparisons {
		return shared.ErrComparisonLimit
	}
	s.ids = append(s.ids, id)
	return nil
}

// Deselect removes id, reporting whether it was selected
func (s *ComparisonSelection) Deselect(id string) bool {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether id is selected
func (s *ComparisonSelection) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns the selected ids in selection order
func (s *ComparisonSelection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of selected ids
func (s *ComparisonSelection) Len() int {
	return len(s.ids)
}

// ComparisonRow is one column of the side-by-side table
type ComparisonRow struct {
	ID           string
	Name         string
	Current      bool
	ProductID    string
	ProductTitle string
	Width        decimal.Decimal
	Height       decimal.Decimal
	Options      OptionSelection
	Quantity     int
	Price        decimal.Decimal
	Total        decimal.Decimal
	PriceSource  strategy.PriceSource
}

// Comparison is the derived side-by-side view
type Comparison struct {
	Rows        []ComparisonRow
	OptionNames []string
}

// CurrentEntry is the live configuration shown first in a comparison.
// Quote is the price already shown in the configurator; when nil the row is
// priced with the local formula.
type CurrentEntry struct {
	Snapshot ConfigurationSnapshot
	Quote    *strategy.PricingResult
}

// BuildComparison derives the comparison table. Saved rows are always priced
// with the local formula and never call remote pricing.
func BuildComparison(current CurrentEntry, saved []SavedConfiguration, local *strategy.LocalPricingStrategy) Comparison {
	if local == nil {
		local = strategy.NewLocalPricingStrategy()
	}

	names := make(map[string]struct{})
	rows := make([]ComparisonRow, 0, len(saved)+1)

	snap := current.Snapshot
	quote := current.Quote
	if quote == nil {
		q := local.Price(snap.PricingContext())
		quote = &q
	}
	rows = append(rows, ComparisonRow{
		Name:         CurrentConfigurationName,
		Current:      true,
		ProductID:    snap.Product.ID,
		ProductTitle: snap.Product.Title,
		Width:        snap.WidthInches(),
		Height:       snap.HeightInches(),
		Options:      snap.Options.Clone(),
		Quantity:     snap.Quantity,
		Price:        quote.Price,
		Total:        LineTotal(quote.Price, snap.Quantity),
		PriceSource:  quote.Source,
	})
	for name := range snap.Options {
		names[name] = struct{}{}
	}

	for i := range saved {
		cfg := &saved[i]
		result := local.Price(cfg.PricingContext())
		rows = append(rows, ComparisonRow{
			ID:           cfg.ID,
			Name:         cfg.Name,
			ProductID:    cfg.Product.ID,
			ProductTitle: cfg.Product.Title,
			Width:        cfg.Width,
			Height:       cfg.Height,
			Options:      cfg.Options.Clone(),
			Quantity:     cfg.Quantity,
			Price:        result.Price,
			Total:        LineTotal(result.Price, cfg.Quantity),
			PriceSource:  result.Source,
		})
		for name := range cfg.Options {
			names[name] = struct{}{}
		}
	}

	optionNames := make([]string, 0, len(names))
	for name := range names {
		optionNames = append(optionNames, name)
	}
	sort.Strings(optionNames)

	return Comparison{Rows: rows, OptionNames: optionNames}
}

// LineTotal returns price times quantity, with quantity floored at 1
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
