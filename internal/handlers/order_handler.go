package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/app"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/service"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	app *app.App
	log zerolog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(a *app.App, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		app: a,
		log: log,
	}
}

// CreateOrder handles POST /api/order
// Submits the current cart with the contact fields of the cart form
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("failed to decode order request")
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.app.Checkout(r.Context(), req)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to create order")

		switch {
		case errors.Is(err, service.ErrEmptyCart):
			WriteError(w, http.StatusBadRequest, "Cart is empty", h.log)
		case errors.Is(err, service.ErrInvalidContact):
			WriteError(w, http.StatusBadRequest, "Phone and address are required", h.log)
		case errors.Is(err, service.ErrInvalidCoupon):
			WriteError(w, http.StatusBadRequest, "Coupon code is not valid", h.log)
		case errors.Is(err, app.ErrCheckoutDisabled):
			WriteError(w, http.StatusServiceUnavailable, "Ordering is not available", h.log)
		default:
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
	h.log.Info().Str("order_id", order.ID).Int("products_count", len(order.Products)).Msg("order created successfully")
}
