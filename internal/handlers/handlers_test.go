package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/app"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestApp builds an app over the embedded catalog with a working order
// service behind it.
func newTestApp(t *testing.T, coupons service.CouponValidator) *app.App {
	t.Helper()

	repo, err := repository.NewInMemoryProductRepository()
	require.NoError(t, err)
	products, err := service.NewProductService(repo, zerolog.Nop()).ListProducts(context.Background())
	require.NoError(t, err)

	orders := service.NewOrderService(repository.NewInMemoryOrderRepository(), coupons, nil, zerolog.Nop())
	a, err := app.New(products, app.Config{
		MenuRange:   quantity.DefaultRange(),
		CartRange:   quantity.Range{Min: 1, Max: 10, Default: 1},
		DeliveryFee: decimal.NewFromInt(20),
		Orders:      orders,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)
	return a
}

func newTestRouter(a *app.App) chi.Router {
	log := zerolog.Nop()
	products := NewProductHandler(a, log)
	carts := NewCartHandler(a, log)
	orders := NewOrderHandler(a, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/product", products.ListProducts)
		r.Route("/product/{productId}", func(r chi.Router) {
			r.Get("/", products.GetProduct)
			r.Post("/toggle", products.ToggleProduct)
			r.Put("/options", products.UpdateOptions)
			r.Put("/quantity", products.SetQuantity)
			r.Post("/quantity/increment", products.IncrementQuantity)
			r.Post("/quantity/decrement", products.DecrementQuantity)
			r.Post("/cart", products.AddToCart)
		})
		r.Get("/cart", carts.GetCart)
		r.Post("/cart/toggle", carts.ToggleCart)
		r.Route("/cart/items/{itemId}", func(r chi.Router) {
			r.Delete("/", carts.RemoveItem)
			r.Put("/quantity", carts.SetItemQuantity)
			r.Post("/quantity/increment", carts.IncrementItem)
			r.Post("/quantity/decrement", carts.DecrementItem)
		})
		r.Post("/order", orders.CreateOrder)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), rr.Body.String())
	return out
}

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
