package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nanayawb/kentecart/internal/types/order"
	"github.com/nanayawb/kentecart/internal/types/product"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(repo *mockRepo, products *mockProducts) *Handler {
	return NewHandler(NewService(repo, products, &stubPromos{}))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlerCreate(t *testing.T) {
	repo := &mockRepo{
		placeOrderFn: func(ctx context.Context, o *order.Order) error {
			o.Number = "KC-20260829-0001"
			return nil
		},
	}
	products := &mockProducts{products: map[int64]*product.Product{1: kenteShirt()}}
	h := setupHandler(repo, products)

	body := `{
        "customer_name":"Ama Mensah","customer_email":"ama@example.com",
        "region":"Greater Accra","address":"12 Oxford Street, Osu",
        "shipping_method":"standard","payment_method":"paystack",
        "items":[{"product_id":1,"quantity":2,"size":"M"}]
    }`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Number   string  `json:"number"`
			Subtotal float64 `json:"subtotal"`
			Total    float64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "KC-20260829-0001", resp.Data.Number)
	assert.Equal(t, 80.0, resp.Data.Subtotal)
	assert.Equal(t, 95.0, resp.Data.Total)
}

func TestHandlerCreateInsufficientStock(t *testing.T) {
	p := kenteShirt()
	p.Stock = 1
	products := &mockProducts{products: map[int64]*product.Product{1: p}}
	h := setupHandler(&mockRepo{}, products)

	body := `{
        "customer_name":"Ama Mensah","customer_email":"ama@example.com",
        "region":"Greater Accra","address":"12 Oxford Street, Osu",
        "shipping_method":"standard","payment_method":"paystack",
        "items":[{"product_id":1,"quantity":3,"size":"M"}]
    }`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerCreateValidationEnvelope(t *testing.T) {
	h := setupHandler(&mockRepo{}, &mockProducts{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool     `json:"success"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Errors)
}

func TestHandlerCancelWrongEmail(t *testing.T) {
	repo := &mockRepo{
		findOrderByNumberFn: func(ctx context.Context, number string) (*order.Order, error) {
			return pendingOrder(), nil
		},
	}
	h := setupHandler(repo, &mockProducts{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/KC-20260829-0001/cancel",
		strings.NewReader(`{"email":"kofi@example.com"}`))
	req = withURLParam(req, "number", "KC-20260829-0001")
	rec := httptest.NewRecorder()

	h.Cancel(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerTrackMissingParams(t *testing.T) {
	h := setupHandler(&mockRepo{}, &mockProducts{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/track", nil)
	rec := httptest.NewRecorder()

	h.Track(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
