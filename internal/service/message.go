package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/internal/whatsapp"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/metrics"
)

// MessageService handles the unified inbox: listing a thread and sending
// outbound messages through the channel engine.
type MessageService struct {
	store         store.Store
	conversations *ConversationService
	bridge        *whatsapp.Bridge
	logger        *logger.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(st store.Store, convs *ConversationService, bridge *whatsapp.Bridge, log *logger.Logger) *MessageService {
	return &MessageService{
		store:         st,
		conversations: convs,
		bridge:        bridge,
		logger:        log,
	}
}

// List returns messages for a conversation, oldest first.
func (s *MessageService) List(ctx context.Context, conversationID string, limit, offset int) (*model.ListMessagesResponse, error) {
	if _, err := s.conversations.Get(ctx, conversationID); err != nil {
		return nil, err
	}

	if limit < 1 || limit > 100 {
		limit = 50
	}
	// Fetch one extra row to learn whether more pages exist.
	msgs, err := s.store.ListMessages(ctx, conversationID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[:limit]
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return &model.ListMessagesResponse{Messages: msgs, HasMore: hasMore}, nil
}

// Send persists an outbound message, forwards it to the channel engine for
// WhatsApp threads, and stamps the conversation's activity fields.
func (s *MessageService) Send(ctx context.Context, conversationID string, req *model.SendMessageRequest) (*model.Message, error) {
	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Direction:      model.DirectionOutbound,
		Body:           req.Body,
		SentAt:         now,
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.conversations.Touch(ctx, conv.ID, now, false); err != nil {
		return nil, err
	}

	// Delivery to the platform is the engine's job; a bridge failure is
	// logged but does not undo the persisted message.
	if conv.Platform == model.PlatformWhatsApp && conv.ExternalID != nil && s.bridge != nil {
		if err := s.bridge.SendMessage(ctx, conv.ShopID, *conv.ExternalID, req.Body); err != nil {
			s.logger.Warn("engine delivery failed",
				zap.String("conversation_id", conv.ID),
				zap.Error(err),
			)
		}
	}

	metrics.MessagesTotal.WithLabelValues(string(conv.Platform), string(model.DirectionOutbound)).Inc()
	return msg, nil
}

// Receive records an inbound message reported by a channel engine, creating
// the conversation on first contact.
func (s *MessageService) Receive(ctx context.Context, shopID string, platform model.Platform, externalID, body string) (*model.Message, error) {
	now := time.Now().UTC()

	conv, err := s.store.GetConversationByIdentity(ctx, shopID, platform, externalID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		conv, err = s.conversations.Create(ctx, &model.CreateConversationRequest{
			ShopID:     shopID,
			Platform:   platform,
			ExternalID: &externalID,
		})
		if err != nil {
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				return nil, err
			}
			// Lost a race with another inbound message for the same thread.
			conv, err = s.store.GetConversationByIdentity(ctx, shopID, platform, externalID)
			if err != nil {
				return nil, err
			}
		}
	}

	msg := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Direction:      model.DirectionInbound,
		Body:           body,
		ExternalID:     &externalID,
		SentAt:         now,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.conversations.Touch(ctx, conv.ID, now, true); err != nil {
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues(string(platform), string(model.DirectionInbound)).Inc()
	return msg, nil
}
