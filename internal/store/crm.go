package store

import (
	"context"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
)

// GetShop loads one shop.
func (s *DB) GetShop(ctx context.Context, id string) (*model.Shop, error) {
	var shop model.Shop
	if err := s.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

// GetCustomer loads one customer.
func (s *DB) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetOrder loads one order.
func (s *DB) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// ListMessages returns messages for a conversation, oldest first.
func (s *DB) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, translate(err)
}

// CreateMessage persists one message.
func (s *DB) CreateMessage(ctx context.Context, m *model.Message) error {
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

// ListChannels returns every channel configured for a shop.
func (s *DB) ListChannels(ctx context.Context, shopID string) ([]model.Channel, error) {
	var chans []model.Channel
	err := s.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("platform ASC").
		Find(&chans).Error
	return chans, translate(err)
}

// GetChannel loads a shop's channel for one platform.
func (s *DB) GetChannel(ctx context.Context, shopID string, platform model.Platform) (*model.Channel, error) {
	var ch model.Channel
	err := s.db.WithContext(ctx).
		First(&ch, "shop_id = ? AND platform = ?", shopID, platform).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ch, nil
}

// SaveChannel inserts or updates a channel row.
func (s *DB) SaveChannel(ctx context.Context, ch *model.Channel) error {
	return translate(s.db.WithContext(ctx).Save(ch).Error)
}

// SetChannelIdentity records the platform-side account id on a shop's channel
// and marks it connected. Called when the WhatsApp engine reports pairing.
func (s *DB) SetChannelIdentity(ctx context.Context, shopID string, platform model.Platform, externalID string) error {
	res := s.db.WithContext(ctx).Model(&model.Channel{}).
		Where("shop_id = ? AND platform = ?", shopID, platform).
		Updates(map[string]any{
			"external_id": externalID,
			"connected":   true,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePublication records a social post attempt.
func (s *DB) CreatePublication(ctx context.Context, p *model.Publication) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}
