package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// couponValidator is the interface for coupon validation
type couponValidator interface {
	IsValid(ctx context.Context, code string) bool
	GetStats() map[string]interface{}
}

// CouponHandler handles HTTP requests for promo code checks
type CouponHandler struct {
	validator couponValidator
	log       zerolog.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(validator couponValidator, log zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		validator: validator,
		log:       log,
	}
}

// ValidateCoupon handles GET /api/coupon/{couponCode}
// A valid code is informational only; it never changes cart totals
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	couponCode := chi.URLParam(r, "couponCode")

	if h.validator.IsValid(r.Context(), couponCode) {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"valid":  true,
			"coupon": couponCode,
		}, h.log)
		return
	}

	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"valid":   false,
		"coupon":  couponCode,
		"message": "Coupon not found or invalid",
	}, h.log)
}

// GetStats handles GET /api/coupon/stats
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.validator.GetStats(), h.log)
}
