package store

import (
	"context"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
)

// GetProduct loads one product with its shop, category and the ten most
// recent order items referencing it.
func (s *DB) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).
		Preload("Shop").
		Preload("Category").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}

	var items []model.OrderItem
	err = s.db.WithContext(ctx).
		Where("product_id = ?", id).
		Order("created_at DESC").
		Limit(10).
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	p.RecentOrderItems = items

	return &p, nil
}

// ListProducts returns one page of products matching the filter plus the
// unpaged total.
func (s *DB) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, int64, error) {
	f.Normalize()

	var total int64
	if err := f.apply(s.db.WithContext(ctx).Model(&model.Product{})).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var products []model.Product
	err := f.apply(s.db.WithContext(ctx).Model(&model.Product{})).
		Preload("Category").
		Order(f.order()).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err)
	}

	return products, total, nil
}

// CreateProduct persists a new product.
func (s *DB) CreateProduct(ctx context.Context, p *model.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

// UpdateProduct applies a change set to one product. Zero affected rows is
// not an error here: MySQL reports none for value-identical updates, and the
// caller verifies existence around the write.
func (s *DB) UpdateProduct(ctx context.Context, id string, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(changes)
	return translate(res.Error)
}

// DeleteProduct removes one product.
func (s *DB) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProductSKUTaken reports whether another product in the shop already uses
// the SKU.
func (s *DB) ProductSKUTaken(ctx context.Context, shopID, sku, excludeID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("shop_id = ? AND sku = ?", shopID, sku)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

// OrderItemCount returns how many order items reference the product.
func (s *DB) OrderItemCount(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&n).Error
	return n, translate(err)
}

// GetCategory loads one category.
func (s *DB) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
