package configurator

import (
	"slices"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/shopspring/decimal"
)

// Selection maps a category id to the option ids checked in it.
type Selection map[string][]string

// SelectionFromForm copies form state into a Selection.
func SelectionFromForm(form models.FormState) Selection {
	sel := make(Selection, len(form))
	for category, options := range form {
		sel[category] = slices.Clone(options)
	}
	return sel
}

// DefaultSelection selects every option flagged as default, which is how
// the menu form is first rendered.
func DefaultSelection(p models.Product) Selection {
	sel := make(Selection)
	p.Params.Each(func(paramID string, param models.Param) {
		param.Options.Each(func(optionID string, option models.Option) {
			if option.Default {
				sel[paramID] = append(sel[paramID], optionID)
			}
		})
	})
	return sel
}

// Has reports whether option is checked in category. A missing category
// has nothing checked.
func (s Selection) Has(category, option string) bool {
	return slices.Contains(s[category], option)
}

// Form returns the selection as form state.
func (s Selection) Form() models.FormState {
	form := make(models.FormState, len(s))
	for category, options := range s {
		form[category] = slices.Clone(options)
	}
	return form
}

// UnitPrice prices one unit of p under sel.
//
// A selected option that is not a default adds its delta. A selected
// default option subtracts its delta. An unselected option changes nothing,
// so unchecking a default never gives its delta back.
func UnitPrice(p models.Product, sel Selection) decimal.Decimal {
	price := p.Price
	p.Params.Each(func(paramID string, param models.Param) {
		param.Options.Each(func(optionID string, option models.Option) {
			if !sel.Has(paramID, optionID) {
				return
			}
			if option.Default {
				price = price.Sub(option.Price)
			} else {
				price = price.Add(option.Price)
			}
		})
	})
	return price
}
