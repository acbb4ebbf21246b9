// Package cart holds the line items a customer has added and the totals
// derived from them.
package cart

import (
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/announce"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config configures a Cart.
type Config struct {
	// Parent owns the cart's node; nil makes it a root.
	Parent      *announce.Node
	DeliveryFee decimal.Decimal
	// Range bounds every line item's quantity; the zero Range means
	// quantity.DefaultRange. Default is ignored, a line starts at its
	// snapshot quantity.
	Range   quantity.Range
	Summary view.CartSummary
	// LineHandles is asked for the display regions of each new line.
	LineHandles func(id uuid.UUID) LineHandles
	Logger      zerolog.Logger
}

// Cart is an ordered list of line items. Totals are recomputed on every
// add, remove and line quantity change, so Totals never returns a stale
// value.
type Cart struct {
	items       []*LineItem
	totals      view.Totals
	node        *announce.Node
	products    *announce.Node
	deliveryFee decimal.Decimal
	rng         quantity.Range
	summary     view.CartSummary
	lineHandles func(id uuid.UUID) LineHandles
	log         zerolog.Logger
}

// New creates an empty cart.
func New(cfg Config) *Cart {
	var node *announce.Node
	if cfg.Parent != nil {
		node = cfg.Parent.Child("cart")
	} else {
		node = announce.NewRoot("cart")
	}

	c := &Cart{
		node:        node,
		products:    node.Child("products"),
		deliveryFee: cfg.DeliveryFee,
		rng:         cfg.Range,
		summary:     cfg.Summary,
		lineHandles: cfg.LineHandles,
		log:         cfg.Logger,
	}
	if c.rng == (quantity.Range{}) {
		c.rng = quantity.DefaultRange()
	}
	if c.summary == nil {
		c.summary = view.Discard{}
	}
	if c.lineHandles == nil {
		c.lineHandles = func(uuid.UUID) LineHandles { return LineHandles{} }
	}

	c.products.Listen(announce.Updated, func(ev *announce.Event) {
		c.RecomputeTotals()
	})
	c.products.Listen(announce.RemovalRequested, func(ev *announce.Event) {
		if li, ok := ev.Payload.(*LineItem); ok {
			c.Remove(li)
		}
	})

	c.RecomputeTotals()
	return c
}

// Node returns the cart's node.
func (c *Cart) Node() *announce.Node {
	return c.node
}

// Add appends a new line built from snap and recomputes totals.
func (c *Cart) Add(snap models.LineSnapshot) (*LineItem, error) {
	id := uuid.New()
	li, err := newLineItem(id, c.products, snap, c.rng, c.lineHandles(id))
	if err != nil {
		return nil, err
	}

	c.items = append(c.items, li)
	c.log.Debug().
		Str("line_id", id.String()).
		Str("product_id", li.productID).
		Int("quantity", li.Quantity()).
		Str("line_total", li.lineTotal.String()).
		Msg("line item added")

	c.RecomputeTotals()
	return li, nil
}

// Remove deletes li, matched by identity, and recomputes totals. It reports
// whether li was in the cart; removing a missing line does nothing.
func (c *Cart) Remove(li *LineItem) bool {
	for i, item := range c.items {
		if item != li {
			continue
		}
		c.items = append(c.items[:i:i], c.items[i+1:]...)
		li.node.Detach()

		c.log.Debug().
			Str("line_id", li.id.String()).
			Str("product_id", li.productID).
			Msg("line item removed")

		c.RecomputeTotals()
		return true
	}
	return false
}

// Clear removes every line.
func (c *Cart) Clear() {
	for _, li := range c.items {
		li.node.Detach()
	}
	c.items = nil
	c.RecomputeTotals()
}

// Items returns the lines in insertion order.
func (c *Cart) Items() []*LineItem {
	return append([]*LineItem(nil), c.items...)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Find returns the line with the given id.
func (c *Cart) Find(id uuid.UUID) (*LineItem, bool) {
	for _, li := range c.items {
		if li.id == id {
			return li, true
		}
	}
	return nil, false
}

// Totals returns the aggregate as of the last mutation.
func (c *Cart) Totals() view.Totals {
	return c.totals
}

// RecomputeTotals folds the current lines into the aggregate and shows it.
func (c *Cart) RecomputeTotals() {
	c.totals = Fold(c.items, c.deliveryFee)
	c.summary.ShowTotals(c.totals)
}

// Fold computes the aggregate of items. The delivery fee is only charged
// when at least one unit is in the cart.
func Fold(items []*LineItem, deliveryFee decimal.Decimal) view.Totals {
	t := view.Totals{Subtotal: decimal.Zero, DeliveryFee: decimal.Zero, Total: decimal.Zero}
	for _, li := range items {
		t.ItemCount += li.Quantity()
		t.Subtotal = t.Subtotal.Add(li.lineTotal)
	}
	if t.ItemCount > 0 {
		t.DeliveryFee = deliveryFee
		t.Total = deliveryFee.Add(t.Subtotal)
	}
	return t
}

// Lines returns a snapshot of every line in order.
func (c *Cart) Lines() []models.LineSnapshot {
	lines := make([]models.LineSnapshot, 0, len(c.items))
	for _, li := range c.items {
		lines = append(lines, li.Snapshot())
	}
	return lines
}
