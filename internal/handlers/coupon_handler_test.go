package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockValidator implements a simple mock validator for testing
type mockValidator struct {
	validCoupons map[string]bool
}

func (m *mockValidator) IsValid(ctx context.Context, code string) bool {
	return m.validCoupons[code]
}

func (m *mockValidator) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"total_files":   3,
		"file_sizes":    []int{100, 200, 150},
		"total_coupons": 450,
	}
}

func TestCouponHandler_ValidateCoupon(t *testing.T) {
	mockVal := &mockValidator{
		validCoupons: map[string]bool{
			"HAPPYHRS": true,
			"FIFTYOFF": true,
		},
	}

	tests := []struct {
		name           string
		couponCode     string
		expectedStatus int
		expectedValid  bool
	}{
		{name: "valid coupon", couponCode: "HAPPYHRS", expectedStatus: http.StatusOK, expectedValid: true},
		{name: "invalid coupon - too short", couponCode: "SHORT", expectedStatus: http.StatusNotFound},
		{name: "invalid coupon - does not exist", couponCode: "NOTEXIST", expectedStatus: http.StatusNotFound},
		{name: "empty coupon code", couponCode: "", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCouponHandler(mockVal, zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, "/api/coupon/"+tt.couponCode, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("couponCode", tt.couponCode)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rr := httptest.NewRecorder()

			h.ValidateCoupon(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
			response := decode[map[string]interface{}](t, rr)
			assert.Equal(t, tt.expectedValid, response["valid"])
			assert.Equal(t, tt.couponCode, response["coupon"])
		})
	}
}

func TestCouponHandler_GetStats(t *testing.T) {
	handler := NewCouponHandler(&mockValidator{validCoupons: map[string]bool{}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/coupon/stats", nil)
	rr := httptest.NewRecorder()
	handler.GetStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[map[string]interface{}](t, rr)
	assert.EqualValues(t, 3, stats["total_files"])
	assert.EqualValues(t, 450, stats["total_coupons"])
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(zerolog.Nop(), "test").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]interface{}](t, rr)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}
