package model

import (
	"time"

	"gorm.io/datatypes"
)

// Shop owns every other entity. A shop is one merchant account on the
// dashboard.
type Shop struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Slug        string     `gorm:"size:128;uniqueIndex" json:"slug"`
	Description *string    `gorm:"size:512" json:"description,omitempty"`
	Phone       *string    `gorm:"size:32" json:"phone,omitempty"`
	Currency    string     `gorm:"size:8;not null;default:'XOF'" json:"currency"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Channel is a connected messaging surface for a shop. ExternalID holds the
// platform-side account identity, for WhatsApp the paired account JID.
type Channel struct {
	ID         string         `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID     string         `gorm:"type:char(36);not null;uniqueIndex:ux_channels_shop_platform" json:"shopId"`
	Platform   Platform       `gorm:"size:16;not null;uniqueIndex:ux_channels_shop_platform" json:"platform"`
	ExternalID *string        `gorm:"size:191" json:"externalId,omitempty"`
	Connected  bool           `gorm:"not null;default:false" json:"connected"`
	Config     datatypes.JSON `json:"config,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`

	Shop *Shop `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
}

// ConnectChannelRequest is the body for POST /api/v1/channels.
type ConnectChannelRequest struct {
	ShopID     string   `json:"shopId" validate:"required,uuid"`
	Platform   Platform `json:"platform" validate:"required"`
	ExternalID *string  `json:"externalId,omitempty" validate:"omitempty,min=1,max=191"`
}
