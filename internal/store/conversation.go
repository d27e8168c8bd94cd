package store

import (
	"context"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
)

// GetConversation loads one conversation with its shop, customer and order
// summaries plus the most recent message.
func (s *DB) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Preload("Shop").
		Preload("Customer").
		Preload("Order").
		First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := s.attachLastMessages(ctx, []*model.Conversation{&conv}); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns one page of conversations matching the filter,
// plus the unpaged total.
func (s *DB) ListConversations(ctx context.Context, f ConversationFilter) ([]model.Conversation, int64, error) {
	f.Normalize()

	base := f.apply(s.db.WithContext(ctx).Model(&model.Conversation{}))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var convs []model.Conversation
	err := f.apply(s.db.WithContext(ctx).Model(&model.Conversation{})).
		Preload("Shop").
		Preload("Customer").
		Preload("Order").
		Order(f.order()).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&convs).Error
	if err != nil {
		return nil, 0, translate(err)
	}

	ptrs := make([]*model.Conversation, len(convs))
	for i := range convs {
		ptrs[i] = &convs[i]
	}
	if err := s.attachLastMessages(ctx, ptrs); err != nil {
		return nil, 0, err
	}

	return convs, total, nil
}

// ConversationsByIDs loads the conversations for the given ids. Missing ids
// are simply absent from the result, callers compare lengths.
func (s *DB) ConversationsByIDs(ctx context.Context, ids []string) ([]model.Conversation, error) {
	var convs []model.Conversation
	if len(ids) == 0 {
		return convs, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&convs).Error
	return convs, translate(err)
}

// CreateConversation persists a new conversation.
func (s *DB) CreateConversation(ctx context.Context, c *model.Conversation) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

// UpdateConversations applies the same change set to every listed id and
// returns the number of rows touched.
func (s *DB) UpdateConversations(ctx context.Context, ids []string, changes map[string]any) (int64, error) {
	if len(ids) == 0 || len(changes) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id IN ?", ids).
		Updates(changes)
	return res.RowsAffected, translate(res.Error)
}

// DeleteConversations removes the listed conversations.
func (s *DB) DeleteConversations(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Conversation{})
	return res.RowsAffected, translate(res.Error)
}

// ConversationIdentityTaken reports whether another conversation already
// claims the (shop, platform, externalID) triple.
func (s *DB) ConversationIdentityTaken(ctx context.Context, shopID string, platform model.Platform, externalID string, excludeIDs []string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("shop_id = ? AND platform = ? AND external_id = ?", shopID, platform, externalID)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

// GetConversationByIdentity loads the conversation claiming the given
// (shop, platform, externalID) triple.
func (s *DB) GetConversationByIdentity(ctx context.Context, shopID string, platform model.Platform, externalID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		First(&conv, "shop_id = ? AND platform = ? AND external_id = ?", shopID, platform, externalID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// OrderLinked reports whether the order already has a conversation outside
// the excluded set.
func (s *DB) OrderLinked(ctx context.Context, orderID string, excludeIDs []string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("order_id = ?", orderID)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

// MessageCounts returns the message count per conversation id. Conversations
// with no messages are absent from the map.
func (s *DB) MessageCounts(ctx context.Context, conversationIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ConversationID string
		N              int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS n").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, r := range rows {
		counts[r.ConversationID] = r.N
	}
	return counts, nil
}

// attachLastMessages fills LastMessage for each conversation with its most
// recent message, one query per page.
func (s *DB) attachLastMessages(ctx context.Context, convs []*model.Conversation) error {
	if len(convs) == 0 {
		return nil
	}
	ids := make([]string, len(convs))
	byID := make(map[string]*model.Conversation, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	var msgs []model.Message
	err := s.db.WithContext(ctx).Raw(`
		SELECT m.* FROM messages m
		JOIN (
			SELECT conversation_id, MAX(sent_at) AS latest
			FROM messages WHERE conversation_id IN ?
			GROUP BY conversation_id
		) t ON m.conversation_id = t.conversation_id AND m.sent_at = t.latest`, ids).
		Scan(&msgs).Error
	if err != nil {
		return translate(err)
	}
	for i := range msgs {
		c := byID[msgs[i].ConversationID]
		if c != nil && c.LastMessage == nil {
			c.LastMessage = &msgs[i]
		}
	}
	return nil
}
