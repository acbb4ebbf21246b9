// Package quantity implements the bounded counter attached to one
// purchasable unit.
package quantity

import (
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/announce"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrRejected is returned when an input is non-numeric or outside the
	// range. The selector keeps its previous value.
	ErrRejected = errors.New("quantity rejected")
	// ErrInvalidRange is returned by New for an unusable range.
	ErrInvalidRange = errors.New("invalid quantity range")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Range bounds a selector. Min and Max are inclusive.
type Range struct {
	Min     int `validate:"gte=0"`
	Max     int `validate:"gtefield=Min"`
	Default int `validate:"gtefield=Min,ltefield=Max"`
}

// DefaultRange is the menu preset: start at 1, allow 1..10.
func DefaultRange() Range {
	return Range{Min: 1, Max: 10, Default: 1}
}

// Validate checks Min <= Default <= Max.
func (r Range) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return nil
}

// Contains reports whether v is inside the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// WithDefault returns a copy of r starting at value.
func (r Range) WithDefault(value int) Range {
	r.Default = value
	return r
}

// Selector holds a validated integer and announces every accepted change
// with announce.Updated on its node. The payload is the selector.
type Selector struct {
	rng     Range
	value   int
	node    *announce.Node
	control view.QuantityControl
}

// New creates a selector on node starting at rng.Default. The initial value
// is validated like any other input but is not announced. A nil control
// discards display updates.
func New(node *announce.Node, rng Range, control view.QuantityControl) (*Selector, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if control == nil {
		control = view.Discard{}
	}

	s := &Selector{rng: rng, value: rng.Default, node: node, control: control}
	s.control.ShowQuantity(s.value)
	return s, nil
}

// Value returns the current quantity.
func (s *Selector) Value() int {
	return s.value
}

// Range returns the configured bounds.
func (s *Selector) Range() Range {
	return s.rng
}

// Node returns the node the selector announces on.
func (s *Selector) Node() *announce.Node {
	return s.node
}

// SetValue parses raw and stores it when it is a new value inside the
// range, then announces the change. Otherwise state is untouched; the
// control is re-synced to the held value either way so it never shows a
// rejected edit. Writing the current value again is not an error.
func (s *Selector) SetValue(raw any) error {
	v, ok := Parse(raw)
	if !ok || !s.rng.Contains(v) {
		s.control.ShowQuantity(s.value)
		return fmt.Errorf("%w: %v not in [%d, %d]", ErrRejected, raw, s.rng.Min, s.rng.Max)
	}
	if v == s.value {
		s.control.ShowQuantity(s.value)
		return nil
	}

	s.value = v
	s.control.ShowQuantity(v)
	s.node.Raise(announce.Updated, s)
	return nil
}

// Increment is SetValue(Value()+1). At Max it is rejected, not clamped.
func (s *Selector) Increment() error {
	return s.SetValue(s.value + 1)
}

// Decrement is SetValue(Value()-1). At Min it is rejected, not clamped.
func (s *Selector) Decrement() error {
	return s.SetValue(s.value - 1)
}
