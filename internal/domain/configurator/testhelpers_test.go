package configurator

import (
	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProduct() catalog.Product {
	return catalog.Product{
		ID:          "cellular-shade",
		Title:       "Cordless Cellular Shade",
		BasePrice:   dec("129.99"),
		WidthRange:  catalog.DimensionRange{Min: 12, Max: 96},
		HeightRange: catalog.DimensionRange{Min: 12, Max: 108},
		Options: []catalog.ProductOption{
			{Name: "Color", Values: []string{"White", "Linen", "Graphite"}},
			{Name: "Control Type", Values: []string{"Corded", "Cordless", "Motorized"}, Default: "Cordless"},
			{Name: "Light Blocker", Values: []string{"None", "Side Channels", "Full Blackout Kit"}},
			{Name: "Mount Type", Values: []string{"Inside Mount", "Outside Mount"}},
		},
	}
}
