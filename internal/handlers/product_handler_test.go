package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/app"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts(t *testing.T) {
	r := newTestRouter(newTestApp(t, nil))

	rr := do(t, r, http.MethodGet, "/api/product", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	products := decode[[]app.ProductState](t, rr)
	require.Len(t, products, 4)

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.Product.ID)
	}
	assert.Equal(t, []string{"cake", "breakfast", "pizza", "salad"}, ids)
}

func TestGetProduct(t *testing.T) {
	r := newTestRouter(newTestApp(t, nil))

	tests := []struct {
		name           string
		productID      string
		expectedStatus int
	}{
		{name: "existing product", productID: "pizza", expectedStatus: http.StatusOK},
		{name: "unknown product", productID: "calzone", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, r, http.MethodGet, "/api/product/"+tt.productID, nil)
			require.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus != http.StatusOK {
				body := decode[map[string]string](t, rr)
				assert.Equal(t, "Product not found", body["error"])
				return
			}

			state := decode[app.ProductState](t, rr)
			assert.Equal(t, "pizza", state.Product.ID)
			assert.True(t, state.UnitPrice.Equal(price(12)), state.UnitPrice.String())
			assert.Equal(t, 1, state.Quantity.Value)
		})
	}
}

func TestToggleProduct_Accordion(t *testing.T) {
	r := newTestRouter(newTestApp(t, nil))

	rr := do(t, r, http.MethodPost, "/api/product/pizza/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[app.ProductState](t, rr).Active)

	rr = do(t, r, http.MethodPost, "/api/product/salad/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[app.ProductState](t, rr).Active)

	rr = do(t, r, http.MethodGet, "/api/product/pizza", nil)
	assert.False(t, decode[app.ProductState](t, rr).Active, "opening salad collapses pizza")
}

func TestUpdateOptions(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		r := newTestRouter(newTestApp(t, nil))

		// cream +2, salami +3, no crust chosen
		rr := do(t, r, http.MethodPut, "/api/product/pizza/options", map[string][]string{
			"sauce":    {"cream"},
			"toppings": {"salami"},
		})
		require.Equal(t, http.StatusOK, rr.Code)

		state := decode[app.ProductState](t, rr)
		assert.True(t, state.UnitPrice.Equal(price(25)), state.UnitPrice.String())
		assert.True(t, state.Price.Equal(price(25)), state.Price.String())
		assert.True(t, state.Indicators["toppings-salami"])
		assert.False(t, state.Indicators["toppings-olives"])
	})

	t.Run("form body with repeated keys", func(t *testing.T) {
		r := newTestRouter(newTestApp(t, nil))

		form := url.Values{}
		form.Add("sauce", "tomato")
		form.Add("toppings", "salami")
		form.Add("toppings", "olives")
		form.Add("crust", "standard")
		req := httptest.NewRequest(http.MethodPut, "/api/product/pizza/options", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		// salami +3, olives selected default -2
		state := decode[app.ProductState](t, rr)
		assert.True(t, state.UnitPrice.Equal(price(21)), state.UnitPrice.String())
		assert.ElementsMatch(t, []string{"salami", "olives"}, state.Selection["toppings"])
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newTestRouter(newTestApp(t, nil))
		rr := do(t, r, http.MethodPut, "/api/product/pizza/options", "{not json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		r := newTestRouter(newTestApp(t, nil))
		rr := do(t, r, http.MethodPut, "/api/product/calzone/options", map[string][]string{})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name          string
		body          any
		expectedValue int
		rejected      bool
	}{
		{name: "number", body: map[string]any{"value": 3}, expectedValue: 3},
		{name: "numeric string", body: map[string]any{"value": "4"}, expectedValue: 4},
		{name: "leading integer", body: map[string]any{"value": "5 pizzas"}, expectedValue: 5},
		{name: "exponent reads leading digits", body: `{"value": 3e1}`, expectedValue: 3},
		{name: "above max", body: map[string]any{"value": 11}, expectedValue: 1, rejected: true},
		{name: "below min", body: map[string]any{"value": 0}, expectedValue: 1, rejected: true},
		{name: "not a number", body: map[string]any{"value": "abc"}, expectedValue: 1, rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(newTestApp(t, nil))

			rr := do(t, r, http.MethodPut, "/api/product/pizza/quantity", tt.body)
			require.Equal(t, http.StatusOK, rr.Code, "rejections are absorbed")

			state := decode[app.ProductState](t, rr)
			assert.Equal(t, tt.expectedValue, state.Quantity.Value)
			assert.Equal(t, tt.rejected, state.Quantity.Rejected)
			assert.True(t, state.Price.Equal(price(12).Mul(price(int64(tt.expectedValue)))), state.Price.String())
		})
	}
}

func TestSetQuantity_BadBody(t *testing.T) {
	r := newTestRouter(newTestApp(t, nil))

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, "/api/product/pizza/quantity", map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, "/api/product/pizza/quantity", "[").Code)
}

func TestIncrementDecrementQuantity(t *testing.T) {
	r := newTestRouter(newTestApp(t, nil))

	rr := do(t, r, http.MethodPost, "/api/product/cake/quantity/decrement", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[app.ProductState](t, rr)
	assert.Equal(t, 1, state.Quantity.Value)
	assert.True(t, state.Quantity.Rejected, "decrement at min is rejected, not clamped")

	rr = do(t, r, http.MethodPost, "/api/product/cake/quantity/increment", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[app.ProductState](t, rr)
	assert.Equal(t, 2, state.Quantity.Value)
	assert.False(t, state.Quantity.Rejected)
	assert.True(t, state.Price.Equal(price(18)), state.Price.String())
}

func TestAddToCart(t *testing.T) {
	r := newTestRouter(newTestApp(t, nil))

	do(t, r, http.MethodPut, "/api/product/cake/quantity", map[string]any{"value": 2})

	rr := do(t, r, http.MethodPost, "/api/product/cake/cart", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	line := decode[app.LineState](t, rr)
	assert.NotEmpty(t, line.ItemID)
	assert.Equal(t, "cake", line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(price(9)))
	assert.True(t, line.LineTotal.Equal(price(18)))

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/api/product/calzone/cart", nil).Code)
}

func TestAddToCart_QuantityAboveCartRange(t *testing.T) {
	repo, err := repository.NewInMemoryProductRepository()
	require.NoError(t, err)
	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)

	a, err := app.New(products, app.Config{
		MenuRange:   quantity.Range{Min: 1, Max: 10, Default: 1},
		CartRange:   quantity.Range{Min: 1, Max: 9, Default: 1},
		DeliveryFee: decimal.NewFromInt(20),
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)
	r := newTestRouter(a)

	do(t, r, http.MethodPut, "/api/product/cake/quantity", map[string]any{"value": 10})
	rr := do(t, r, http.MethodPost, "/api/product/cake/cart", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	msg := decode[map[string]string](t, rr)["error"]
	assert.Equal(t, "Quantity is not accepted by the cart", msg)
	assert.NotContains(t, msg, "Range.Default")

	cart := decode[app.CartState](t, do(t, r, http.MethodGet, "/api/cart", nil))
	assert.Empty(t, cart.Products)
}
