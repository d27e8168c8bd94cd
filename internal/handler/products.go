package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nafioutino/xamxam.io-sub000/internal/middleware"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

// ProductHandler handles the catalogue endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc *service.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: log}
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.List(r.Context(), *filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if details := middleware.ValidateStruct(&req); details != nil {
		writeErrorDetails(w, http.StatusBadRequest, "validation failed", details)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Get handles GET /api/v1/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateUUID("id", id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Update handles PATCH /api/v1/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateUUID("id", id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if details := middleware.ValidateStruct(&req); details != nil {
		writeErrorDetails(w, http.StatusBadRequest, "validation failed", details)
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateUUID("id", id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseProductFilter(q map[string][]string) (*store.ProductFilter, error) {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	var f store.ProductFilter

	if v := get("shopId"); v != "" {
		if err := middleware.ValidateUUID("shopId", v); err != nil {
			return nil, err
		}
		f.ShopID = &v
	}
	if v := get("categoryId"); v != "" {
		if err := middleware.ValidateUUID("categoryId", v); err != nil {
			return nil, err
		}
		f.CategoryID = &v
	}
	if v := get("isPublished"); v != "" {
		switch v {
		case "true":
			b := true
			f.IsPublished = &b
		case "false":
			b := false
			f.IsPublished = &b
		default:
			return nil, fmt.Errorf("isPublished must be \"true\" or \"false\"")
		}
	}
	f.Search = get("search")

	f.Page = 1
	if v := get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("page must be a positive integer")
		}
		f.Page = n
	}
	f.Limit = 20
	if v := get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("limit must be an integer between 1 and 100")
		}
		f.Limit = n
	}

	f.SortBy = "createdAt"
	if v := get("sortBy"); v != "" {
		if !store.ProductSortable(v) {
			return nil, fmt.Errorf("sortBy must be one of createdAt, updatedAt, name, price, stock")
		}
		f.SortBy = v
	}
	f.SortOrder = "desc"
	if v := get("sortOrder"); v != "" {
		if v != "asc" && v != "desc" {
			return nil, fmt.Errorf("sortOrder must be \"asc\" or \"desc\"")
		}
		f.SortOrder = v
	}

	return &f, nil
}
