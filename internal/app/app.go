// Package app wires the menu, the cart and their display handles into one
// object that the transport layer drives.
//
// Every exported method takes the same lock, so each external event runs
// to completion, announcements included, before the next one starts.
package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/announce"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/configurator"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/metrics"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrLineItemNotFound = errors.New("line item not found")
	ErrCheckoutDisabled = errors.New("checkout is not configured")
)

// OrderPlacer stores an order built from the cart.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req models.OrderRequest, lines []models.LineSnapshot, totals view.Totals) (*models.Order, error)
}

// Config configures New.
type Config struct {
	// MenuRange bounds every configurator's quantity.
	MenuRange quantity.Range
	// CartRange bounds line item quantities; Default is ignored.
	CartRange   quantity.Range
	DeliveryFee decimal.Decimal
	Orders      OrderPlacer
	Metrics     *metrics.Domain
	Logger      zerolog.Logger
}

type menuEntry struct {
	conf    *configurator.Configurator
	counter *view.Counter
	label   *view.Label
	toggles *view.ToggleSet
}

type lineEntry struct {
	counter *view.Counter
	label   *view.Label
}

// App is one customer session: the menu of configurators, the cart, and
// which panels are open.
type App struct {
	mu       sync.Mutex
	root     *announce.Node
	menu     []*menuEntry
	byID     map[string]*menuEntry
	cart     *cart.Cart
	summary  *view.Summary
	lines    map[uuid.UUID]*lineEntry
	active   string
	cartOpen bool
	orders   OrderPlacer
	metrics  *metrics.Domain
	log      zerolog.Logger
}

// New builds a configurator for every product, in order, and an empty
// cart.
func New(products []models.Product, cfg Config) (*App, error) {
	a := &App{
		root:    announce.NewRoot("app"),
		byID:    make(map[string]*menuEntry, len(products)),
		summary: &view.Summary{},
		lines:   make(map[uuid.UUID]*lineEntry),
		orders:  cfg.Orders,
		metrics: cfg.Metrics,
		log:     cfg.Logger,
	}

	a.root.Listen(announce.Updated, func(ev *announce.Event) {
		switch src := ev.Payload.(type) {
		case *configurator.Configurator:
			a.metrics.Recomputed(src.ID())
		case *cart.LineItem:
			a.metrics.CartItems(a.cart.Totals().ItemCount)
		}
	})

	menuNode := a.root.Child("menu")
	for _, p := range products {
		if _, dup := a.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		entry := &menuEntry{
			counter: &view.Counter{},
			label:   &view.Label{},
			toggles: indicatorsFor(p),
		}
		conf, err := configurator.New(p, configurator.Options{
			Parent: menuNode,
			Range:  cfg.MenuRange,
			Handles: configurator.Handles{
				Quantity:   entry.counter,
				Price:      entry.label,
				Indicators: entry.toggles,
			},
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		entry.conf = conf
		a.menu = append(a.menu, entry)
		a.byID[p.ID] = entry
	}

	a.cart = cart.New(cart.Config{
		Parent:      a.root,
		DeliveryFee: cfg.DeliveryFee,
		Range:       cfg.CartRange,
		Summary:     a.summary,
		LineHandles: func(id uuid.UUID) cart.LineHandles {
			le := &lineEntry{counter: &view.Counter{}, label: &view.Label{}}
			a.lines[id] = le
			return cart.LineHandles{Quantity: le.counter, Price: le.label}
		},
		Logger: cfg.Logger,
	})

	return a, nil
}

// indicatorsFor registers one indicator per option that has an image named
// "<product>-<category>-<option>.<ext>". Products without such images get
// one indicator per option.
func indicatorsFor(p models.Product) *view.ToggleSet {
	set := view.NewToggleSet()
	named := make(map[string]bool, len(p.Images))
	for _, img := range p.Images {
		base := strings.TrimSuffix(path.Base(img), path.Ext(img))
		if rest, ok := strings.CutPrefix(base, p.ID+"-"); ok {
			named[rest] = true
		}
	}

	p.Params.Each(func(paramID string, param models.Param) {
		param.Options.Each(func(optionID string, _ models.Option) {
			if len(named) == 0 || named[paramID+"-"+optionID] {
				set.Add(paramID, optionID)
			}
		})
	})
	return set
}

func (a *App) entry(id string) (*menuEntry, error) {
	e, ok := a.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return e, nil
}

func (a *App) line(id uuid.UUID) (*cart.LineItem, error) {
	li, ok := a.cart.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLineItemNotFound, id)
	}
	return li, nil
}

// Products renders every menu product in catalog order.
func (a *App) Products() []ProductState {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ProductState, 0, len(a.menu))
	for _, e := range a.menu {
		out = append(out, a.productState(e))
	}
	return out
}

// Product renders one menu product.
func (a *App) Product(id string) (ProductState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.entry(id)
	if err != nil {
		return ProductState{}, err
	}
	return a.productState(e), nil
}

// ToggleProduct expands the product and collapses any other expanded one.
// Toggling the expanded product collapses it.
func (a *App) ToggleProduct(id string) (ProductState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.entry(id)
	if err != nil {
		return ProductState{}, err
	}
	if a.active == id {
		a.active = ""
	} else {
		a.active = id
	}
	return a.productState(e), nil
}

// ApplyForm replaces the product's selection.
func (a *App) ApplyForm(id string, form models.FormState) (ProductState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.entry(id)
	if err != nil {
		return ProductState{}, err
	}
	e.conf.ApplyForm(form)
	return a.productState(e), nil
}

// SetQuantity writes raw into the product's quantity selector. A rejected
// input is not an error: the selector has already rolled back and the
// returned state says so.
func (a *App) SetQuantity(id string, raw any) (ProductState, error) {
	return a.changeQuantity(id, func(s *quantity.Selector) error { return s.SetValue(raw) })
}

// IncrementQuantity adds one to the product's quantity.
func (a *App) IncrementQuantity(id string) (ProductState, error) {
	return a.changeQuantity(id, (*quantity.Selector).Increment)
}

// DecrementQuantity subtracts one from the product's quantity.
func (a *App) DecrementQuantity(id string) (ProductState, error) {
	return a.changeQuantity(id, (*quantity.Selector).Decrement)
}

func (a *App) changeQuantity(id string, change func(*quantity.Selector) error) (ProductState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.entry(id)
	if err != nil {
		return ProductState{}, err
	}
	rejected, err := a.absorb("configurator", change(e.conf.Quantity()))
	if err != nil {
		return ProductState{}, err
	}
	state := a.productState(e)
	state.Quantity.Rejected = rejected
	return state, nil
}

// absorb turns a quantity rejection into a flag.
func (a *App) absorb(owner string, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(err, quantity.ErrRejected) {
		a.metrics.QuantityRejected(owner)
		a.log.Debug().Err(err).Str("owner", owner).Msg("quantity input rejected")
		return true, nil
	}
	return false, err
}

// AddToCart snapshots the product into a new cart line.
func (a *App) AddToCart(id string) (LineState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.entry(id)
	if err != nil {
		return LineState{}, err
	}
	li, err := e.conf.AddToCart(a.cart)
	if err != nil {
		a.pruneLines()
		return LineState{}, err
	}
	a.metrics.LineAdded(li.ProductID())
	a.metrics.CartItems(a.cart.Totals().ItemCount)
	return a.lineState(li), nil
}

// pruneLines drops display handles handed out for lines the cart refused.
func (a *App) pruneLines() {
	for id := range a.lines {
		if _, ok := a.cart.Find(id); !ok {
			delete(a.lines, id)
		}
	}
}

// Cart renders the cart.
func (a *App) Cart() CartState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.cartState()
}

// ToggleCart opens or closes the cart panel.
func (a *App) ToggleCart() CartState {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cartOpen = !a.cartOpen
	return a.cartState()
}

// SetLineQuantity writes raw into a line item's quantity selector. Like
// SetQuantity, a rejection is reported in the state rather than as an
// error.
func (a *App) SetLineQuantity(id uuid.UUID, raw any) (CartState, error) {
	return a.changeLineQuantity(id, func(s *quantity.Selector) error { return s.SetValue(raw) })
}

// IncrementLine adds one to a line item's quantity.
func (a *App) IncrementLine(id uuid.UUID) (CartState, error) {
	return a.changeLineQuantity(id, (*quantity.Selector).Increment)
}

// DecrementLine subtracts one from a line item's quantity.
func (a *App) DecrementLine(id uuid.UUID) (CartState, error) {
	return a.changeLineQuantity(id, (*quantity.Selector).Decrement)
}

func (a *App) changeLineQuantity(id uuid.UUID, change func(*quantity.Selector) error) (CartState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	li, err := a.line(id)
	if err != nil {
		return CartState{}, err
	}
	rejected, err := a.absorb("line_item", change(li.Amount()))
	if err != nil {
		return CartState{}, err
	}
	state := a.cartState()
	state.Rejected = rejected
	return state, nil
}

// RemoveLine asks the line item to leave the cart.
func (a *App) RemoveLine(id uuid.UUID) (CartState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	li, err := a.line(id)
	if err != nil {
		return CartState{}, err
	}
	li.Remove()
	delete(a.lines, id)
	a.metrics.LineRemoved(li.ProductID())
	a.metrics.CartItems(a.cart.Totals().ItemCount)
	return a.cartState(), nil
}

// Checkout submits the cart and empties it once the order is stored.
func (a *App) Checkout(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.orders == nil {
		return nil, ErrCheckoutDisabled
	}
	order, err := a.orders.CreateOrder(ctx, req, a.cart.Lines(), a.cart.Totals())
	if err != nil {
		return nil, err
	}

	a.cart.Clear()
	clear(a.lines)
	a.cartOpen = false
	a.metrics.CartItems(0)
	return order, nil
}
