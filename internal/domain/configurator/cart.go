package configurator

import (
	"context"

	"github.com/shopspring/decimal"
)

// CartItem is what the configurator hands to the cart collaborator
type CartItem struct {
	ProductID    string            `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	Quantity     int               `json:"quantity"`
	Width        decimal.Decimal   `json:"width"`
	Height       decimal.Decimal   `json:"height"`
	Options      map[string]string `json:"options"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
}

// NewCartItem builds a cart item from a snapshot and the price shown for it
func NewCartItem(snapshot ConfigurationSnapshot, unitPrice decimal.Decimal) CartItem {
	return CartItem{
		ProductID:    snapshot.Product.ID,
		ProductTitle: snapshot.Product.Title,
		Quantity:     snapshot.Quantity,
		Width:        snapshot.WidthInches(),
		Height:       snapshot.HeightInches(),
		Options:      snapshot.Options.Clone(),
		UnitPrice:    unitPrice,
	}
}

// Cart adds configured products to the shopper's cart
type Cart interface {
	Add(ctx context.Context, item CartItem) error
}
