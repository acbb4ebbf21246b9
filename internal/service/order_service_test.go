package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCoupons map[string]bool

func (s stubCoupons) IsValid(_ context.Context, code string) bool {
	return s[code]
}

type failingRepo struct {
	repository.OrderRepository
}

func (failingRepo) Save(context.Context, models.Order) error {
	return errors.New("disk full")
}

func cartContents() ([]models.LineSnapshot, view.Totals) {
	lines := []models.LineSnapshot{{
		ProductID: "pizza",
		Name:      "Nonno Alberto's Pizza",
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(21),
		LineTotal: decimal.NewFromInt(42),
	}}
	totals := view.Totals{
		ItemCount:   2,
		Subtotal:    decimal.NewFromInt(42),
		DeliveryFee: decimal.NewFromInt(20),
		Total:       decimal.NewFromInt(62),
	}
	return lines, totals
}

func TestOrderService_CreateOrder(t *testing.T) {
	lines, totals := cartContents()

	tests := []struct {
		name    string
		req     models.OrderRequest
		lines   []models.LineSnapshot
		totals  view.Totals
		wantErr error
	}{
		{
			name:   "valid order",
			req:    models.OrderRequest{Phone: "+48 600-700-800", Address: "Main Street 1"},
			lines:  lines,
			totals: totals,
		},
		{
			name:   "valid order with coupon",
			req:    models.OrderRequest{Phone: "600700800", Address: "Main Street 1", CouponCode: "HAPPYHRS"},
			lines:  lines,
			totals: totals,
		},
		{
			name:    "empty cart",
			req:     models.OrderRequest{Phone: "600700800", Address: "Main Street 1"},
			totals:  view.Totals{},
			wantErr: ErrEmptyCart,
		},
		{
			name:    "missing phone",
			req:     models.OrderRequest{Address: "Main Street 1"},
			lines:   lines,
			totals:  totals,
			wantErr: ErrInvalidContact,
		},
		{
			name:    "blank address",
			req:     models.OrderRequest{Phone: "600700800", Address: "   "},
			lines:   lines,
			totals:  totals,
			wantErr: ErrInvalidContact,
		},
		{
			name:    "phone with letters",
			req:     models.OrderRequest{Phone: "call me", Address: "Main Street 1"},
			lines:   lines,
			totals:  totals,
			wantErr: ErrInvalidContact,
		},
		{
			name:    "unknown coupon",
			req:     models.OrderRequest{Phone: "600700800", Address: "Main Street 1", CouponCode: "NOTEXIST"},
			lines:   lines,
			totals:  totals,
			wantErr: ErrInvalidCoupon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewInMemoryOrderRepository()
			svc := NewOrderService(repo, stubCoupons{"HAPPYHRS": true}, nil, zerolog.Nop())

			order, err := svc.CreateOrder(context.Background(), tt.req, tt.lines, tt.totals)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				stored, _ := repo.List(context.Background())
				assert.Empty(t, stored)
				return
			}

			require.NoError(t, err)
			_, err = uuid.Parse(order.ID)
			assert.NoError(t, err, "order id is a uuid")
			assert.Equal(t, tt.req.CouponCode, order.CouponCode)

			stored, err := repo.GetByID(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, order.ID, stored.ID)
		})
	}
}

func TestOrderService_PayloadComesFromTotals(t *testing.T) {
	lines, totals := cartContents()
	svc := NewOrderService(repository.NewInMemoryOrderRepository(), stubCoupons{"HAPPYHRS": true}, nil, zerolog.Nop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	order, err := svc.CreateOrder(context.Background(),
		models.OrderRequest{Phone: " 600700800 ", Address: "Main Street 1", CouponCode: "HAPPYHRS"}, lines, totals)
	require.NoError(t, err)

	assert.Equal(t, "600700800", order.Phone)
	assert.Equal(t, 2, order.TotalNumber)
	assert.True(t, order.SubtotalPrice.Equal(decimal.NewFromInt(42)))
	assert.True(t, order.DeliveryFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(62)), "a coupon never changes the total")
	assert.Equal(t, lines, order.Products)
	assert.Equal(t, fixed, order.CreatedAt)
}

func TestOrderService_NoCouponValidatorAcceptsAnyCode(t *testing.T) {
	lines, totals := cartContents()
	svc := NewOrderService(repository.NewInMemoryOrderRepository(), nil, nil, zerolog.Nop())

	_, err := svc.CreateOrder(context.Background(),
		models.OrderRequest{Phone: "600700800", Address: "Main Street 1", CouponCode: "ANYTHING"}, lines, totals)
	assert.NoError(t, err)
}

func TestOrderService_StoreFailure(t *testing.T) {
	lines, totals := cartContents()
	svc := NewOrderService(failingRepo{}, nil, nil, zerolog.Nop())

	_, err := svc.CreateOrder(context.Background(),
		models.OrderRequest{Phone: "600700800", Address: "Main Street 1"}, lines, totals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
