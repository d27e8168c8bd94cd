package model

import "time"

// PublicationStatus is the delivery state of a social post.
type PublicationStatus string

const (
	PublicationPublished PublicationStatus = "PUBLISHED"
	PublicationFailed    PublicationStatus = "FAILED"
)

// Publication records a social post pushed to an external platform.
type Publication struct {
	ID         string            `gorm:"type:char(36);primaryKey" json:"id"`
	ShopID     string            `gorm:"type:char(36);not null;index" json:"shopId"`
	Platform   Platform          `gorm:"size:16;not null" json:"platform"`
	ProductID  *string           `gorm:"type:char(36);index" json:"productId,omitempty"`
	Caption    string            `gorm:"type:text;not null" json:"caption"`
	MediaURL   *string           `gorm:"size:512" json:"mediaUrl,omitempty"`
	ExternalID *string           `gorm:"size:191" json:"externalId,omitempty"`
	Status     PublicationStatus `gorm:"size:16;not null" json:"status"`
	Error      *string           `gorm:"size:512" json:"error,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// PublishRequest is the body for POST /api/v1/publish.
type PublishRequest struct {
	ShopID    string   `json:"shopId" validate:"required,uuid"`
	Platform  Platform `json:"platform" validate:"required"`
	ProductID *string  `json:"productId,omitempty" validate:"omitempty,uuid"`
	Caption   string   `json:"caption" validate:"required,max=2200"`
	MediaURL  *string  `json:"mediaUrl,omitempty" validate:"omitempty,url,max=512"`
}

// GenerateContentRequest is the body for POST /api/v1/content/generate.
type GenerateContentRequest struct {
	ProductID string   `json:"productId" validate:"required,uuid"`
	Platform  Platform `json:"platform" validate:"required"`
	Tone      string   `json:"tone,omitempty" validate:"omitempty,max=64"`
	Language  string   `json:"language,omitempty" validate:"omitempty,max=32"`
}

// GeneratedContent is the response for POST /api/v1/content/generate.
type GeneratedContent struct {
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Model     string   `json:"model"`
	TokensIn  int      `json:"tokensIn"`
	TokensOut int      `json:"tokensOut"`
}
