package handlers

import (
	"errors"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler serves the cart panel and its line items
type CartHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(a *app.App, logger zerolog.Logger) *CartHandler {
	return &CartHandler{app: a, logger: logger}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.app.Cart(), h.logger)
}

// ToggleCart handles POST /api/cart/toggle
func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.app.ToggleCart(), h.logger)
}

// SetItemQuantity handles PUT /api/cart/items/{itemId}/quantity
func (h *CartHandler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemID(w, r)
	if !ok {
		return
	}
	raw, err := decodeQuantity(w, r)
	if err != nil {
		h.logger.Warn().Err(err).Str("item_id", itemID.String()).Msg("failed to decode quantity")
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	state, err := h.app.SetLineQuantity(itemID, raw)
	h.respond(w, itemID, state, err)
}

// IncrementItem handles POST /api/cart/items/{itemId}/quantity/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemID(w, r)
	if !ok {
		return
	}
	state, err := h.app.IncrementLine(itemID)
	h.respond(w, itemID, state, err)
}

// DecrementItem handles POST /api/cart/items/{itemId}/quantity/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemID(w, r)
	if !ok {
		return
	}
	state, err := h.app.DecrementLine(itemID)
	h.respond(w, itemID, state, err)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemID(w, r)
	if !ok {
		return
	}
	state, err := h.app.RemoveLine(itemID)
	if err == nil {
		h.logger.Info().Str("item_id", itemID.String()).Msg("removed from cart")
	}
	h.respond(w, itemID, state, err)
}

func (h *CartHandler) itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "itemId")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn().Str("item_id", raw).Err(err).Msg("invalid item ID format")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *CartHandler) respond(w http.ResponseWriter, itemID uuid.UUID, state app.CartState, err error) {
	if err == nil {
		WriteJSON(w, http.StatusOK, state, h.logger)
		return
	}
	if errors.Is(err, app.ErrLineItemNotFound) {
		h.logger.Info().Str("item_id", itemID.String()).Msg("line item not found")
		WriteError(w, http.StatusNotFound, "Line item not found", h.logger)
		return
	}
	h.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("cart request failed")
	WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
}
