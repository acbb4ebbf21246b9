package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParamSummary lists the options chosen in one category, option id to label.
type ParamSummary struct {
	Label   string          `json:"label"`
	Options Ordered[string] `json:"options"`
}

// LineSnapshot is a configurator's selection frozen at add-to-cart time.
// Categories without a selected option are present with no options.
type LineSnapshot struct {
	ProductID string                `json:"id"`
	Name      string                `json:"name"`
	Quantity  int                   `json:"amount"`
	UnitPrice decimal.Decimal       `json:"priceSingle"`
	LineTotal decimal.Decimal       `json:"price"`
	Params    Ordered[ParamSummary] `json:"params"`
}

// OrderRequest carries the cart form fields.
type OrderRequest struct {
	Phone      string `json:"phone" validate:"required,min=6,max=20,phone"`
	Address    string `json:"address" validate:"required,min=3,max=200"`
	CouponCode string `json:"couponCode,omitempty"`
}

// Order is a submitted cart.
type Order struct {
	ID            string          `json:"id"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	CouponCode    string          `json:"couponCode,omitempty"`
	TotalNumber   int             `json:"totalNumber"`
	SubtotalPrice decimal.Decimal `json:"subtotalPrice"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Products      []LineSnapshot  `json:"products"`
	CreatedAt     time.Time       `json:"createdAt"`
}
