package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/metrics"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidContact = errors.New("phone and address are required")
	ErrInvalidCoupon  = errors.New("coupon code is not valid")
)

// CouponValidator checks promo codes
type CouponValidator interface {
	IsValid(ctx context.Context, code string) bool
}

// OrderService turns the cart into a stored order
type OrderService struct {
	orders          repository.OrderRepository
	couponValidator CouponValidator
	metrics         *metrics.Domain
	log             zerolog.Logger
	now             func() time.Time
}

// NewOrderService creates a new order service. A nil couponValidator
// accepts any coupon code.
func NewOrderService(orders repository.OrderRepository, couponValidator CouponValidator, m *metrics.Domain, log zerolog.Logger) *OrderService {
	return &OrderService{
		orders:          orders,
		couponValidator: couponValidator,
		metrics:         m,
		log:             log,
		now:             time.Now,
	}
}

// CreateOrder validates the contact data and the optional coupon, then
// stores the order built from lines and their totals. The coupon is
// informational and never changes the totals.
func (s *OrderService) CreateOrder(ctx context.Context, req models.OrderRequest, lines []models.LineSnapshot, totals view.Totals) (*models.Order, error) {
	if len(lines) == 0 || totals.ItemCount == 0 {
		s.metrics.OrderRejected("empty_cart")
		return nil, ErrEmptyCart
	}

	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.CouponCode = strings.TrimSpace(req.CouponCode)

	if err := req.Validate(); err != nil {
		s.metrics.OrderRejected("invalid_contact")
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	if req.CouponCode != "" && s.couponValidator != nil {
		if !s.couponValidator.IsValid(ctx, req.CouponCode) {
			s.metrics.OrderRejected("invalid_coupon")
			return nil, ErrInvalidCoupon
		}
	}

	order := models.Order{
		ID:            generateOrderID(),
		Phone:         req.Phone,
		Address:       req.Address,
		CouponCode:    req.CouponCode,
		TotalNumber:   totals.ItemCount,
		SubtotalPrice: totals.Subtotal,
		DeliveryFee:   totals.DeliveryFee,
		TotalPrice:    totals.Total,
		Products:      lines,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.metrics.OrderRejected("store_failed")
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.metrics.OrderPlaced(order.TotalPrice.InexactFloat64())
	s.log.Info().
		Str("order_id", order.ID).
		Int("total_number", order.TotalNumber).
		Str("total_price", order.TotalPrice.String()).
		Msg("order created")

	return &order, nil
}

// generateOrderID generates a unique order ID using UUID
func generateOrderID() string {
	return uuid.New().String()
}
