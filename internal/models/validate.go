package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOrderRequest is returned by OrderRequest.Validate.
var ErrInvalidOrderRequest = errors.New("invalid order request")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", validPhone)
	return v
}

// validPhone accepts digits with optional leading '+', spaces and dashes.
func validPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 6
}

// Validate checks the contact fields of the cart form.
func (r OrderRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrderRequest, err)
	}
	return nil
}
