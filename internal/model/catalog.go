package model

import "time"

// Category groups products within a shop.
type Category struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID    string    `gorm:"type:char(36);not null;uniqueIndex:ux_categories_shop_name" json:"shopId"`
	Name      string    `gorm:"size:128;not null;uniqueIndex:ux_categories_shop_name" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a catalogue entry. SKU is unique within a shop; prices are kept
// in minor currency units.
type Product struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID      string    `gorm:"type:char(36);not null;uniqueIndex:ux_products_shop_sku" json:"shopId"`
	CategoryID  *string   `gorm:"type:char(36);index" json:"categoryId,omitempty"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description *string   `gorm:"size:2048" json:"description,omitempty"`
	SKU         *string   `gorm:"size:64;uniqueIndex:ux_products_shop_sku" json:"sku,omitempty"`
	Price       int64     `gorm:"not null" json:"price"`
	Stock       int64     `gorm:"not null;default:0" json:"stock"`
	ImageURL    *string   `gorm:"size:512" json:"imageUrl,omitempty"`
	IsPublished bool      `gorm:"not null;default:false" json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Shop     *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// RecentOrderItems is filled by the store on single-product reads.
	RecentOrderItems []OrderItem `gorm:"-" json:"recentOrderItems,omitempty"`
}

// CreateProductRequest is the body for POST /api/v1/products.
type CreateProductRequest struct {
	ShopID      string  `json:"shopId" validate:"required,uuid"`
	CategoryID  *string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2048"`
	SKU         *string `json:"sku,omitempty" validate:"omitempty,min=1,max=64"`
	Price       int64   `json:"price" validate:"min=0"`
	Stock       int64   `json:"stock" validate:"min=0"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url,max=512"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// ProductUpdate carries a partial update. Nil fields are left untouched.
type ProductUpdate struct {
	CategoryID  *string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2048"`
	SKU         *string `json:"sku,omitempty" validate:"omitempty,min=1,max=64"`
	Price       *int64  `json:"price,omitempty" validate:"omitempty,min=0"`
	Stock       *int64  `json:"stock,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url,max=512"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u *ProductUpdate) Empty() bool {
	return u.CategoryID == nil && u.Name == nil && u.Description == nil &&
		u.SKU == nil && u.Price == nil && u.Stock == nil && u.ImageURL == nil &&
		u.IsPublished == nil
}

// ListProductsResponse is the response for listing products.
type ListProductsResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
