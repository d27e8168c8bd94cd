package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

// ProductService owns the catalogue rules: SKU uniqueness within a shop,
// category ownership, and the order-item guard on deletes.
type ProductService struct {
	store  store.Store
	logger *logger.Logger
}

// NewProductService creates a new product service.
func NewProductService(st store.Store, log *logger.Logger) *ProductService {
	return &ProductService{store: st, logger: log}
}

// Get loads one product with its shop, category and recent order items.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		return nil, err
	}
	return p, nil
}

// List returns one page of products matching the filter.
func (s *ProductService) List(ctx context.Context, f store.ProductFilter) (*model.ListProductsResponse, error) {
	f.Normalize()
	products, total, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return &model.ListProductsResponse{
		Products: products,
		Pagination: model.Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: store.Pages(total, f.Limit),
		},
	}, nil
}

// Create validates and persists a new product.
func (s *ProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if _, err := s.store.GetShop(ctx, req.ShopID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "shop", ID: req.ShopID}
		}
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, *req.CategoryID, req.ShopID); err != nil {
			return nil, err
		}
	}

	if req.SKU != nil {
		taken, err := s.store.ProductSKUTaken(ctx, req.ShopID, *req.SKU, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Reason: "a product with this SKU already exists in this shop"}
		}
	}

	p := &model.Product{
		ID:          uuid.NewString(),
		ShopID:      req.ShopID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if req.IsPublished != nil {
		p.IsPublished = *req.IsPublished
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Reason: "a product with this SKU already exists in this shop"}
		}
		return nil, err
	}

	s.logger.Info("product created", zap.String("product_id", p.ID), zap.String("shop_id", p.ShopID))
	return s.Get(ctx, p.ID)
}

// Update applies a partial update to one product.
func (s *ProductService) Update(ctx context.Context, id string, data *model.ProductUpdate) (*model.Product, error) {
	if data.Empty() {
		return nil, &ValidationError{Reason: "data must contain at least one field"}
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data.CategoryID != nil {
		if err := s.checkCategory(ctx, *data.CategoryID, current.ShopID); err != nil {
			return nil, err
		}
	}

	if data.SKU != nil {
		taken, err := s.store.ProductSKUTaken(ctx, current.ShopID, *data.SKU, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Reason: "a product with this SKU already exists in this shop"}
		}
	}

	changes := productChanges(data)
	if err := s.store.UpdateProduct(ctx, id, changes); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, &NotFoundError{Resource: "product", ID: id}
		case errors.Is(err, store.ErrDuplicate):
			return nil, &ConflictError{Reason: "a product with this SKU already exists in this shop"}
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes one product unless order items still reference it.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	n, err := s.store.OrderItemCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &ConflictError{
			Reason:  "product has order items and cannot be deleted",
			Details: map[string]any{"orderItemCount": n},
		}
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: id}
		}
		return err
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID, shopID string) error {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "category", ID: categoryID}
		}
		return err
	}
	if cat.ShopID != shopID {
		return &ValidationError{Reason: "category does not belong to this shop"}
	}
	return nil
}

func productChanges(data *model.ProductUpdate) map[string]any {
	changes := make(map[string]any)
	if data.CategoryID != nil {
		changes["category_id"] = *data.CategoryID
	}
	if data.Name != nil {
		changes["name"] = *data.Name
	}
	if data.Description != nil {
		changes["description"] = *data.Description
	}
	if data.SKU != nil {
		changes["sku"] = *data.SKU
	}
	if data.Price != nil {
		changes["price"] = *data.Price
	}
	if data.Stock != nil {
		changes["stock"] = *data.Stock
	}
	if data.ImageURL != nil {
		changes["image_url"] = *data.ImageURL
	}
	if data.IsPublished != nil {
		changes["is_published"] = *data.IsPublished
	}
	return changes
}
