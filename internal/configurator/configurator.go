// Package configurator holds the live, editable selection for one catalog
// entry before it goes into the cart.
package configurator

import (
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/announce"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cart receives snapshots.
type Cart interface {
	Add(snapshot models.LineSnapshot) (*cart.LineItem, error)
}

// Handles are the display regions a configurator writes to. Nil handles
// discard output.
type Handles struct {
	Quantity   view.QuantityControl
	Price      view.PriceDisplay
	Indicators view.IndicatorRegion
}

// Options configure New.
type Options struct {
	// Parent owns the configurator's node; nil makes it a root.
	Parent  *announce.Node
	Range   quantity.Range
	Handles Handles
	Logger  zerolog.Logger
}

// Configurator is one product on the menu. After every selection or
// quantity change it recomputes the unit price and raises announce.Updated
// on its node with itself as payload.
type Configurator struct {
	product   models.Product
	selection Selection
	amount    *quantity.Selector
	node      *announce.Node
	price     view.PriceDisplay
	indicator view.IndicatorRegion
	unitPrice decimal.Decimal
	log       zerolog.Logger
}

// New builds the configurator for p, selects p's default options and
// computes the first price.
func New(p models.Product, opts Options) (*Configurator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var node *announce.Node
	if opts.Parent != nil {
		node = opts.Parent.Child(p.ID)
	} else {
		node = announce.NewRoot(p.ID)
	}

	c := &Configurator{
		product:   p,
		selection: DefaultSelection(p),
		node:      node,
		price:     opts.Handles.Price,
		indicator: opts.Handles.Indicators,
		log:       opts.Logger.With().Str("product_id", p.ID).Logger(),
	}
	if c.price == nil {
		c.price = view.Discard{}
	}
	if c.indicator == nil {
		c.indicator = view.Discard{}
	}

	amountNode := node.Child("amount")
	amount, err := quantity.New(amountNode, opts.Range, opts.Handles.Quantity)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", p.ID, err)
	}
	c.amount = amount

	amountNode.Listen(announce.Updated, func(ev *announce.Event) {
		ev.StopPropagation()
		c.Recompute()
	})

	c.Recompute()
	return c, nil
}

// ID returns the catalog id.
func (c *Configurator) ID() string {
	return c.product.ID
}

// Product returns the catalog entry.
func (c *Configurator) Product() models.Product {
	return c.product
}

// Node returns the configurator's node.
func (c *Configurator) Node() *announce.Node {
	return c.node
}

// Quantity returns the owned quantity selector.
func (c *Configurator) Quantity() *quantity.Selector {
	return c.amount
}

// Selection returns a copy of the current selection.
func (c *Configurator) Selection() Selection {
	return SelectionFromForm(c.selection.Form())
}

// UnitPrice is the last computed price of one unit.
func (c *Configurator) UnitPrice() decimal.Decimal {
	return c.unitPrice
}

// Price is the displayed price: unit price times quantity.
func (c *Configurator) Price() decimal.Decimal {
	return c.unitPrice.Mul(decimal.NewFromInt(int64(c.amount.Value())))
}

// ApplyForm replaces the selection with form and recomputes.
func (c *Configurator) ApplyForm(form models.FormState) {
	c.selection = SelectionFromForm(form)
	c.Recompute()
}

// Recompute derives the unit price from the selection, shows or hides
// option indicators, and pushes the displayed price. It is deterministic
// and may be called any number of times.
func (c *Configurator) Recompute() {
	c.product.Params.Each(func(paramID string, param models.Param) {
		param.Options.Each(func(optionID string, _ models.Option) {
			if ind, ok := c.indicator.Indicator(paramID, optionID); ok {
				ind.SetVisible(c.selection.Has(paramID, optionID))
			}
		})
	})

	c.unitPrice = UnitPrice(c.product, c.selection)
	c.price.ShowPrice(c.Price())

	c.log.Debug().
		Str("unit_price", c.unitPrice.String()).
		Int("quantity", c.amount.Value()).
		Msg("configurator recomputed")

	c.node.Raise(announce.Updated, c)
}

// PrepareSnapshot freezes the current state for the cart. Every category
// appears, with an empty option map when nothing is selected in it.
func (c *Configurator) PrepareSnapshot() models.LineSnapshot {
	snap := models.LineSnapshot{
		ProductID: c.product.ID,
		Name:      c.product.Name,
		Quantity:  c.amount.Value(),
		UnitPrice: c.unitPrice,
		LineTotal: c.Price(),
	}

	c.product.Params.Each(func(paramID string, param models.Param) {
		summary := models.ParamSummary{Label: param.Label}
		param.Options.Each(func(optionID string, option models.Option) {
			if c.selection.Has(paramID, optionID) {
				summary.Options.Set(optionID, option.Label)
			}
		})
		snap.Params.Set(paramID, summary)
	})

	return snap
}

// AddToCart recomputes from the latest form state and hands a snapshot to
// the cart.
func (c *Configurator) AddToCart(dst Cart) (*cart.LineItem, error) {
	c.Recompute()
	item, err := dst.Add(c.PrepareSnapshot())
	if err != nil {
		return nil, fmt.Errorf("add %q to cart: %w", c.product.ID, err)
	}
	return item, nil
}
