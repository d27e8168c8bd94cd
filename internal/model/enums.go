package model

// Platform is a messaging surface a shop communicates through.
type Platform string

const (
	PlatformWhatsApp  Platform = "WHATSAPP"
	PlatformMessenger Platform = "MESSENGER"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTikTok    Platform = "TIKTOK"
)

// Platforms lists every recognized platform.
func Platforms() []Platform {
	return []Platform{PlatformWhatsApp, PlatformMessenger, PlatformInstagram, PlatformTikTok}
}

// Valid reports whether p is a recognized platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformWhatsApp, PlatformMessenger, PlatformInstagram, PlatformTikTok:
		return true
	}
	return false
}

// ConversationStatus is the workflow state of a conversation.
type ConversationStatus string

const (
	StatusOpen     ConversationStatus = "OPEN"
	StatusPending  ConversationStatus = "PENDING"
	StatusResolved ConversationStatus = "RESOLVED"
	StatusClosed   ConversationStatus = "CLOSED"
)

// Valid reports whether s is a recognized status.
func (s ConversationStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPending, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority is the triage priority of a conversation.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether p is a recognized priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MessageDirection distinguishes customer messages from shop replies.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "INBOUND"
	DirectionOutbound MessageDirection = "OUTBOUND"
)
