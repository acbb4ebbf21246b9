package cart

import (
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/announce"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineHandles are the display regions of one line item.
type LineHandles struct {
	Quantity view.QuantityControl
	Price    view.PriceDisplay
}

// LineItem is a frozen copy of a configurator's selection with its own
// quantity selector. The unit price never changes after creation.
type LineItem struct {
	id        uuid.UUID
	productID string
	name      string
	unitPrice decimal.Decimal
	lineTotal decimal.Decimal
	params    models.Ordered[models.ParamSummary]
	amount    *quantity.Selector
	node      *announce.Node
	price     view.PriceDisplay
}

func newLineItem(id uuid.UUID, parent *announce.Node, snap models.LineSnapshot, rng quantity.Range, handles LineHandles) (*LineItem, error) {
	li := &LineItem{
		id:        id,
		productID: snap.ProductID,
		name:      snap.Name,
		unitPrice: snap.UnitPrice,
		params:    snap.Params,
		node:      parent.Child("item-" + id.String()),
		price:     handles.Price,
	}
	if li.price == nil {
		li.price = view.Discard{}
	}

	amountNode := li.node.Child("amount")
	amount, err := quantity.New(amountNode, rng.WithDefault(snap.Quantity), handles.Quantity)
	if err != nil {
		return nil, fmt.Errorf("line item %q: %w", snap.ProductID, err)
	}
	li.amount = amount
	li.recompute()

	amountNode.Listen(announce.Updated, func(ev *announce.Event) {
		ev.StopPropagation()
		li.recompute()
		li.node.Raise(announce.Updated, li)
	})

	return li, nil
}

func (li *LineItem) recompute() {
	li.lineTotal = li.unitPrice.Mul(decimal.NewFromInt(int64(li.amount.Value())))
	li.price.ShowPrice(li.lineTotal)
}

// ID identifies this line among lines with identical content.
func (li *LineItem) ID() uuid.UUID {
	return li.id
}

// ProductID returns the catalog id the line was taken from.
func (li *LineItem) ProductID() string {
	return li.productID
}

// Name returns the product name.
func (li *LineItem) Name() string {
	return li.name
}

// Quantity returns the current quantity.
func (li *LineItem) Quantity() int {
	return li.amount.Value()
}

// UnitPrice returns the price of one unit fixed at snapshot time.
func (li *LineItem) UnitPrice() decimal.Decimal {
	return li.unitPrice
}

// LineTotal returns quantity times unit price.
func (li *LineItem) LineTotal() decimal.Decimal {
	return li.lineTotal
}

// Params returns the chosen option labels per category.
func (li *LineItem) Params() models.Ordered[models.ParamSummary] {
	return li.params
}

// Amount returns the line's quantity selector.
func (li *LineItem) Amount() *quantity.Selector {
	return li.amount
}

// Node returns the line's node.
func (li *LineItem) Node() *announce.Node {
	return li.node
}

// Remove asks the owner to delete this line. The line does not touch the
// cart itself.
func (li *LineItem) Remove() {
	li.node.Raise(announce.RemovalRequested, li)
}

// Snapshot returns the line's current state in snapshot form.
func (li *LineItem) Snapshot() models.LineSnapshot {
	return models.LineSnapshot{
		ProductID: li.productID,
		Name:      li.name,
		Quantity:  li.amount.Value(),
		UnitPrice: li.unitPrice,
		LineTotal: li.lineTotal,
		Params:    li.params,
	}
}
