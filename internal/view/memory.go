package view

import (
	"github.com/shopspring/decimal"
)

// Counter remembers the last quantity shown.
type Counter struct {
	Value  int
	Writes int
}

func (c *Counter) ShowQuantity(value int) {
	c.Value = value
	c.Writes++
}

// Label remembers the last price shown.
type Label struct {
	Price decimal.Decimal
}

func (l *Label) ShowPrice(price decimal.Decimal) {
	l.Price = price
}

// Toggle remembers whether it is visible.
type Toggle struct {
	Visible bool
}

func (t *Toggle) SetVisible(visible bool) {
	t.Visible = visible
}

// ToggleSet is an IndicatorRegion holding one Toggle per registered
// (category, option) pair. Options without a registered toggle have no
// indicator.
type ToggleSet struct {
	toggles map[string]*Toggle
}

// NewToggleSet creates an empty region.
func NewToggleSet() *ToggleSet {
	return &ToggleSet{toggles: make(map[string]*Toggle)}
}

func indicatorKey(categoryID, optionID string) string {
	return categoryID + "-" + optionID
}

// Add registers an indicator for the option and returns it.
func (s *ToggleSet) Add(categoryID, optionID string) *Toggle {
	t := &Toggle{}
	s.toggles[indicatorKey(categoryID, optionID)] = t
	return t
}

func (s *ToggleSet) Indicator(categoryID, optionID string) (Indicator, bool) {
	t, ok := s.toggles[indicatorKey(categoryID, optionID)]
	if !ok {
		return nil, false
	}
	return t, true
}

// Visible reports every indicator by key ("category-option").
func (s *ToggleSet) Visible() map[string]bool {
	out := make(map[string]bool, len(s.toggles))
	for k, t := range s.toggles {
		out[k] = t.Visible
	}
	return out
}

// Summary remembers the last cart totals shown.
type Summary struct {
	Totals Totals
}

func (s *Summary) ShowTotals(t Totals) {
	s.Totals = t
}
