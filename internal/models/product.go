package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidProduct is returned by Product.Validate.
	ErrInvalidProduct = errors.New("invalid product")
)

var validate = newValidator()

// Product is one catalog entry. It is read-only once loaded.
// Schema matches the menu data document (`dataSource.products.<id>`).
type Product struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Class       string          `json:"class,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Params      Ordered[Param]  `json:"params"`
}

// Param is a modifier category, e.g. "toppings".
type Param struct {
	Label   string          `json:"label" validate:"required"`
	Type    string          `json:"type" validate:"omitempty,oneof=checkboxes radios select"`
	Options Ordered[Option] `json:"options"`
}

// Option is one choice inside a category. Price is a signed delta.
type Option struct {
	Label   string          `json:"label" validate:"required"`
	Price   decimal.Decimal `json:"price"`
	Default bool            `json:"default,omitempty"`
}

// Validate checks the entry can back a configurator.
func (p Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidProduct, p.ID, err)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w %q: base price %s is negative", ErrInvalidProduct, p.ID, p.Price)
	}

	var err error
	p.Params.Each(func(paramID string, param Param) {
		if err != nil {
			return
		}
		if verr := validate.Struct(param); verr != nil {
			err = fmt.Errorf("%w %q: param %q: %v", ErrInvalidProduct, p.ID, paramID, verr)
			return
		}
		param.Options.Each(func(optionID string, option Option) {
			if err != nil {
				return
			}
			if verr := validate.Struct(option); verr != nil {
				err = fmt.Errorf("%w %q: option %s.%s: %v", ErrInvalidProduct, p.ID, paramID, optionID, verr)
			}
		})
	})
	return err
}

// FormState is the serialised form of one configurator: control name to
// the values currently checked or selected. A missing key means nothing is
// selected in that category.
type FormState map[string][]string
