package handlers

import (
	"errors"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/app"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler serves the menu: catalog entries and their live
// configurator state.
type ProductHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(a *app.App, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		app:    a,
		logger: logger,
	}
}

// ListProducts handles GET /api/product
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.app.Products(), h.logger)
}

// GetProduct handles GET /api/product/{productId}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	state, err := h.app.Product(productID)
	h.respond(w, productID, state, err)
}

// ToggleProduct handles POST /api/product/{productId}/toggle
func (h *ProductHandler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	state, err := h.app.ToggleProduct(productID)
	h.respond(w, productID, state, err)
}

// UpdateOptions handles PUT /api/product/{productId}/options
func (h *ProductHandler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	form, err := decodeFormState(w, r)
	if err != nil {
		h.logger.Warn().Err(err).Str("product_id", productID).Msg("failed to decode options")
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	state, err := h.app.ApplyForm(productID, form)
	h.respond(w, productID, state, err)
}

// SetQuantity handles PUT /api/product/{productId}/quantity
func (h *ProductHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	raw, err := decodeQuantity(w, r)
	if err != nil {
		h.logger.Warn().Err(err).Str("product_id", productID).Msg("failed to decode quantity")
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	state, err := h.app.SetQuantity(productID, raw)
	h.respond(w, productID, state, err)
}

// IncrementQuantity handles POST /api/product/{productId}/quantity/increment
func (h *ProductHandler) IncrementQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	state, err := h.app.IncrementQuantity(productID)
	h.respond(w, productID, state, err)
}

// DecrementQuantity handles POST /api/product/{productId}/quantity/decrement
func (h *ProductHandler) DecrementQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	state, err := h.app.DecrementQuantity(productID)
	h.respond(w, productID, state, err)
}

// AddToCart handles POST /api/product/{productId}/cart
// Returns 201 with the new line item
func (h *ProductHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	line, err := h.app.AddToCart(productID)
	if err != nil {
		h.fail(w, productID, err)
		return
	}
	h.logger.Info().
		Str("product_id", productID).
		Str("item_id", line.ItemID.String()).
		Int("amount", line.Quantity).
		Msg("added to cart")
	WriteJSON(w, http.StatusCreated, line, h.logger)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (string, bool) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		h.logger.Warn().Msg("product ID is required")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return "", false
	}
	return productID, true
}

func (h *ProductHandler) respond(w http.ResponseWriter, productID string, state app.ProductState, err error) {
	if err != nil {
		h.fail(w, productID, err)
		return
	}
	WriteJSON(w, http.StatusOK, state, h.logger)
}

func (h *ProductHandler) fail(w http.ResponseWriter, productID string, err error) {
	switch {
	case errors.Is(err, app.ErrProductNotFound):
		h.logger.Info().Str("product_id", productID).Msg("product not found")
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, quantity.ErrInvalidRange):
		h.logger.Warn().Err(err).Str("product_id", productID).Msg("quantity not accepted by the cart")
		WriteError(w, http.StatusUnprocessableEntity, "Quantity is not accepted by the cart", h.logger)
	default:
		h.logger.Error().Err(err).Str("product_id", productID).Msg("product request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
