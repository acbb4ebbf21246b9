// Package view defines the handles the pricing core writes to and small
// in-memory implementations of them.
//
// The core never renders anything. It receives these handles from whoever
// builds the screen and pushes validated state into them.
package view

import (
	"github.com/shopspring/decimal"
)

// QuantityControl shows the value held by a quantity selector.
type QuantityControl interface {
	ShowQuantity(value int)
}

// PriceDisplay shows a price.
type PriceDisplay interface {
	ShowPrice(price decimal.Decimal)
}

// Indicator is a visibility toggle, such as an ingredient image.
type Indicator interface {
	SetVisible(visible bool)
}

// IndicatorRegion locates the optional indicator for one option.
type IndicatorRegion interface {
	Indicator(categoryID, optionID string) (Indicator, bool)
}

// Totals is the cart aggregate as shown to the user.
type Totals struct {
	ItemCount   int             `json:"totalNumber"`
	Subtotal    decimal.Decimal `json:"subtotalPrice"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"totalPrice"`
}

// CartSummary shows the cart aggregate.
type CartSummary interface {
	ShowTotals(t Totals)
}

// Discard implements every handle and drops what it is given.
type Discard struct{}

func (Discard) ShowQuantity(int) {}
func (Discard) ShowPrice(decimal.Decimal) {}
func (Discard) SetVisible(bool) {}
func (Discard) ShowTotals(Totals) {}
func (Discard) Indicator(string, string) (Indicator, bool) { return nil, false }
