package handler

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/internal/store/storetest"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

func newProductRouter(st *storetest.Store) chi.Router {
	log := logger.NewNop()
	svc := service.NewProductService(st, log)
	h := NewProductHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestListProducts_RejectsBadQuery(t *testing.T) {
	r := newProductRouter(seededHandlerStore())

	for _, target := range []string{
		"/api/v1/products?limit=0",
		"/api/v1/products?limit=999",
		"/api/v1/products?page=0",
		"/api/v1/products?sortBy=secret",
		"/api/v1/products?isPublished=maybe",
		"/api/v1/products?shopId=abc",
	} {
		rec, _ := doJSON(t, r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestProductLifecycle_Handler(t *testing.T) {
	st := seededHandlerStore()
	r := newProductRouter(st)

	rec, body := doJSON(t, r, http.MethodPost, "/api/v1/products",
		`{"shopId":"`+testShopID+`","name":"wax print fabric","sku":"WAX-001","price":150000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)
	assert.Equal(t, false, body["isPublished"])

	// SKU is taken within the shop.
	rec, _ = doJSON(t, r, http.MethodPost, "/api/v1/products",
		`{"shopId":"`+testShopID+`","name":"duplicate","sku":"WAX-001","price":100}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = doJSON(t, r, http.MethodPatch, "/api/v1/products/"+id,
		`{"price":175000,"isPublished":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 175000, body["price"])
	assert.Equal(t, true, body["isPublished"])

	rec, _ = doJSON(t, r, http.MethodPatch, "/api/v1/products/"+id, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Blocked by an order item.
	st.OrderItems = append(st.OrderItems, model.OrderItem{
		ID:        "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b",
		OrderID:   testOrderID,
		ProductID: id,
		Quantity:  1,
		UnitPrice: 150000,
	})
	rec, body = doJSON(t, r, http.MethodDelete, "/api/v1/products/"+id, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, details["orderItemCount"])

	st.OrderItems = nil
	rec, _ = doJSON(t, r, http.MethodDelete, "/api/v1/products/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, r, http.MethodGet, "/api/v1/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
