// Package model defines the persisted entities and API payloads for the
// XAMXAM commerce dashboard.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is a thread between a shop and a customer on one channel.
//
// The (shop_id, platform, external_id) triple is unique among conversations
// that carry an external id; order_id is unique across all conversations, so
// an order is linked to at most one thread. Both are enforced at the schema
// level in addition to the pre-write checks in the service layer.
type Conversation struct {
	ID            string                      `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID        string                      `gorm:"type:char(36);not null;index;uniqueIndex:ux_conversations_identity" json:"shopId"`
	Platform      Platform                    `gorm:"size:16;not null;uniqueIndex:ux_conversations_identity" json:"platform"`
	ExternalID    *string                     `gorm:"size:191;uniqueIndex:ux_conversations_identity" json:"externalId,omitempty"`
	Title         *string                     `gorm:"size:256" json:"title,omitempty"`
	IsActive      bool                        `gorm:"not null;default:true" json:"isActive"`
	LastMessageAt *time.Time                  `gorm:"index" json:"lastMessageAt,omitempty"`
	UnreadCount   int                         `gorm:"not null;default:0" json:"unreadCount"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Priority      Priority                    `gorm:"size:8;not null;default:'NORMAL'" json:"priority"`
	Status        ConversationStatus          `gorm:"size:16;not null;default:'OPEN'" json:"status"`
	CustomerID    *string                     `gorm:"type:char(36);index" json:"customerId,omitempty"`
	OrderID       *string                     `gorm:"type:char(36);uniqueIndex" json:"orderId,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`

	Shop     *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Order    *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`

	// LastMessage is filled by the store on reads, it is not a column.
	LastMessage *Message `gorm:"-" json:"lastMessage,omitempty"`
}

// CreateConversationRequest is the body for POST /api/v1/conversations.
type CreateConversationRequest struct {
	ShopID     string              `json:"shopId" validate:"required,uuid"`
	Platform   Platform            `json:"platform" validate:"required"`
	ExternalID *string             `json:"externalId,omitempty" validate:"omitempty,min=1,max=191"`
	Title      *string             `json:"title,omitempty" validate:"omitempty,max=256"`
	CustomerID *string             `json:"customerId,omitempty" validate:"omitempty,uuid"`
	OrderID    *string             `json:"orderId,omitempty" validate:"omitempty,uuid"`
	IsActive   *bool               `json:"isActive,omitempty"`
	Tags       []string            `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=64"`
	Priority   *Priority           `json:"priority,omitempty"`
	Status     *ConversationStatus `json:"status,omitempty"`
}

// ConversationUpdate carries a partial update. Nil fields are left untouched.
type ConversationUpdate struct {
	Title         *string             `json:"title,omitempty" validate:"omitempty,max=256"`
	ExternalID    *string             `json:"externalId,omitempty" validate:"omitempty,min=1,max=191"`
	IsActive      *bool               `json:"isActive,omitempty"`
	LastMessageAt *time.Time          `json:"lastMessageAt,omitempty"`
	UnreadCount   *int                `json:"unreadCount,omitempty" validate:"omitempty,min=0"`
	Tags          *[]string           `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=64"`
	Priority      *Priority           `json:"priority,omitempty"`
	Status        *ConversationStatus `json:"status,omitempty"`
	CustomerID    *string             `json:"customerId,omitempty" validate:"omitempty,uuid"`
	OrderID       *string             `json:"orderId,omitempty" validate:"omitempty,uuid"`
}

// Empty reports whether the update carries no fields at all.
func (u *ConversationUpdate) Empty() bool {
	return u.Title == nil && u.ExternalID == nil && u.IsActive == nil &&
		u.LastMessageAt == nil && u.UnreadCount == nil && u.Tags == nil &&
		u.Priority == nil && u.Status == nil && u.CustomerID == nil && u.OrderID == nil
}

// BulkUpdateConversationsRequest is the body for PATCH /api/v1/conversations.
type BulkUpdateConversationsRequest struct {
	IDs  []string           `json:"ids"`
	Data ConversationUpdate `json:"data"`
}

// Pagination is the paging metadata attached to list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Pagination    Pagination     `json:"pagination"`
}

// BulkResult reports the outcome of a bulk mutation.
type BulkResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// BlockingConversation describes a conversation that still has messages and
// therefore blocks a bulk delete.
type BlockingConversation struct {
	ID           string  `json:"id"`
	Title        *string `json:"title,omitempty"`
	MessageCount int64   `json:"messageCount"`
}
