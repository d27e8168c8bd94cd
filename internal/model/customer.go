package model

import "time"

// Customer is a person a shop talks to or sells to.
type Customer struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID    string    `gorm:"type:char(36);not null;index" json:"shopId"`
	Name      *string   `gorm:"size:128" json:"name,omitempty"`
	Phone     *string   `gorm:"size:32;index" json:"phone,omitempty"`
	Email     *string   `gorm:"size:191" json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a purchase placed with a shop.
type Order struct {
	ID         string      `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID     string      `gorm:"type:char(36);not null;index" json:"shopId"`
	CustomerID *string     `gorm:"type:char(36);index" json:"customerId,omitempty"`
	Number     string      `gorm:"size:32;uniqueIndex" json:"number"`
	Status     OrderStatus `gorm:"size:16;not null;default:'PENDING'" json:"status"`
	Total      int64       `gorm:"not null;default:0" json:"total"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one product line on an order. Its existence blocks deletion of
// the product it references.
type OrderItem struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID   string    `gorm:"type:char(36);not null;index" json:"orderId"`
	ProductID string    `gorm:"type:char(36);not null;index" json:"productId"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unitPrice"`
	CreatedAt time.Time `json:"createdAt"`
}
