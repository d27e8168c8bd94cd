package model

import "time"

// Message is one entry in a conversation. Its mere existence blocks deletion
// of the parent conversation.
type Message struct {
	ID             string           `gorm:"type:char(36);primaryKey" json:"id"`
	ConversationID string           `gorm:"type:char(36);not null;index" json:"conversationId"`
	Direction      MessageDirection `gorm:"size:8;not null" json:"direction"`
	Body           string           `gorm:"type:text;not null" json:"body"`
	ExternalID     *string          `gorm:"size:191" json:"externalId,omitempty"`
	SentAt         time.Time        `gorm:"index" json:"sentAt"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// SendMessageRequest is the body for POST /api/v1/conversations/{id}/messages.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=65535"`
}

// ListMessagesResponse is the response for listing messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"hasMore"`
}
