package app

import (
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityState is what a quantity control shows.
type QuantityState struct {
	Value int `json:"value"`
	Min   int `json:"min"`
	Max   int `json:"max"`
	// Rejected is set when the last input was rolled back.
	Rejected bool `json:"rejected,omitempty"`
}

// ProductState is one menu product as currently displayed.
type ProductState struct {
	Product    models.Product   `json:"product"`
	Active     bool             `json:"active"`
	Selection  models.FormState `json:"selection"`
	Indicators map[string]bool  `json:"indicators"`
	Quantity   QuantityState    `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"priceSingle"`
	Price      decimal.Decimal  `json:"price"`
}

// LineState is one cart line as currently displayed.
type LineState struct {
	ItemID uuid.UUID `json:"itemId"`
	models.LineSnapshot
	Widget QuantityState `json:"amountWidget"`
}

// CartState is the cart panel.
type CartState struct {
	Open     bool        `json:"open"`
	Products []LineState `json:"products"`
	view.Totals
	Rejected bool `json:"rejected,omitempty"`
}

func (a *App) productState(e *menuEntry) ProductState {
	rng := e.conf.Quantity().Range()
	return ProductState{
		Product:    e.conf.Product(),
		Active:     a.active == e.conf.ID(),
		Selection:  e.conf.Selection().Form(),
		Indicators: e.toggles.Visible(),
		Quantity:   QuantityState{Value: e.counter.Value, Min: rng.Min, Max: rng.Max},
		UnitPrice:  e.conf.UnitPrice(),
		Price:      e.label.Price,
	}
}

func (a *App) lineState(li *cart.LineItem) LineState {
	snap := li.Snapshot()
	rng := li.Amount().Range()
	state := LineState{
		ItemID:       li.ID(),
		LineSnapshot: snap,
		Widget:       QuantityState{Value: snap.Quantity, Min: rng.Min, Max: rng.Max},
	}
	if le, ok := a.lines[li.ID()]; ok {
		state.Widget.Value = le.counter.Value
		state.LineTotal = le.label.Price
	}
	return state
}

func (a *App) cartState() CartState {
	items := a.cart.Items()
	state := CartState{
		Open:     a.cartOpen,
		Products: make([]LineState, 0, len(items)),
		Totals:   a.summary.Totals,
	}
	for _, li := range items {
		state.Products = append(state.Products, a.lineState(li))
	}
	return state
}
