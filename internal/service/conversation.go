package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/metrics"
)

// ConversationService owns the conversation resource rules: ownership checks,
// identity and order-link uniqueness, and the message guard on deletes.
type ConversationService struct {
	store  store.Store
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(st store.Store, log *logger.Logger) *ConversationService {
	return &ConversationService{store: st, logger: log}
}

// Create validates and persists a new conversation.
//
// Check order matters: shop existence, then customer, then order, then the
// channel identity triple. Each failing check maps to the status the caller
// expects (404 for missing references, 400 for cross-shop references, 409
// for uniqueness conflicts).
func (s *ConversationService) Create(ctx context.Context, req *model.CreateConversationRequest) (*model.Conversation, error) {
	if _, err := s.store.GetShop(ctx, req.ShopID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "shop", ID: req.ShopID}
		}
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.store.GetCustomer(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &NotFoundError{Resource: "customer", ID: *req.CustomerID}
			}
			return nil, err
		}
		if customer.ShopID != req.ShopID {
			return nil, &ValidationError{Reason: "customer does not belong to this shop"}
		}
	}

	if req.OrderID != nil {
		order, err := s.store.GetOrder(ctx, *req.OrderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &NotFoundError{Resource: "order", ID: *req.OrderID}
			}
			return nil, err
		}
		if order.ShopID != req.ShopID {
			return nil, &ValidationError{Reason: "order does not belong to this shop"}
		}
		linked, err := s.store.OrderLinked(ctx, *req.OrderID, nil)
		if err != nil {
			return nil, err
		}
		if linked {
			return nil, &ConflictError{Reason: "order already has a conversation"}
		}
	}

	if req.ExternalID != nil {
		taken, err := s.store.ConversationIdentityTaken(ctx, req.ShopID, req.Platform, *req.ExternalID, nil)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Reason: "a conversation with this external id already exists for this shop and platform"}
		}
	}

	conv := &model.Conversation{
		ID:         uuid.NewString(),
		ShopID:     req.ShopID,
		Platform:   req.Platform,
		ExternalID: req.ExternalID,
		Title:      req.Title,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		IsActive:   true,
		Tags:       datatypes.NewJSONSlice([]string{}),
		Priority:   model.PriorityNormal,
		Status:     model.StatusOpen,
	}
	if req.IsActive != nil {
		conv.IsActive = *req.IsActive
	}
	if len(req.Tags) > 0 {
		conv.Tags = datatypes.NewJSONSlice(req.Tags)
	}
	if req.Priority != nil {
		conv.Priority = *req.Priority
	}
	if req.Status != nil {
		conv.Status = *req.Status
	}

	if err := s.store.CreateConversation(ctx, conv); err != nil {
		// The schema-level unique indexes are the last line of defense when
		// two creates race past the pre-checks.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Reason: "conversation conflicts with an existing one"}
		}
		return nil, err
	}

	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("shop_id", conv.ShopID),
		zap.String("platform", string(conv.Platform)),
	)
	metrics.ConversationsTotal.WithLabelValues(string(conv.Platform)).Inc()

	created, err := s.store.GetConversation(ctx, conv.ID)
	if err != nil {
		return conv, nil
	}
	return created, nil
}

// Get loads one conversation with its summaries.
func (s *ConversationService) Get(ctx context.Context, id string) (*model.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "conversation", ID: id}
		}
		return nil, err
	}
	return conv, nil
}

// List returns one page of conversations matching the filter.
func (s *ConversationService) List(ctx context.Context, f store.ConversationFilter) (*model.ListConversationsResponse, error) {
	f.Normalize()
	convs, total, err := s.store.ListConversations(ctx, f)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	return &model.ListConversationsResponse{
		Conversations: convs,
		Pagination: model.Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: store.Pages(total, f.Limit),
		},
	}, nil
}

// BulkUpdate applies one partial update to every listed conversation. The
// whole batch runs in a single transaction: targets are re-validated inside
// it, and any violation rolls everything back.
func (s *ConversationService) BulkUpdate(ctx context.Context, ids []string, data *model.ConversationUpdate) (int64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, &ValidationError{Reason: "ids must be a non-empty array"}
	}
	if data.Empty() {
		return 0, &ValidationError{Reason: "data must contain at least one field"}
	}

	var updated int64
	err := s.store.InTx(ctx, func(tx store.Store) error {
		convs, err := tx.ConversationsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, convs); missing != "" {
			return &NotFoundError{Resource: "conversation", ID: missing}
		}

		// Relink checks run per target against that target's own shop, so a
		// batch spanning shops can never move a reference across shops.
		for i := range convs {
			if err := s.validateRelink(ctx, tx, &convs[i], data, ids); err != nil {
				return err
			}
		}

		updated, err = tx.UpdateConversations(ctx, ids, conversationChanges(data))
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return 0, &ConflictError{Reason: "update conflicts with an existing conversation"}
		}
		return 0, err
	}

	s.logger.Info("conversations updated", zap.Int("targets", len(ids)), zap.Int64("updated", updated))
	return updated, nil
}

// validateRelink re-checks the cross-entity invariants for one target when
// the update touches customerId, orderId or externalId.
func (s *ConversationService) validateRelink(ctx context.Context, tx store.Store, conv *model.Conversation, data *model.ConversationUpdate, batchIDs []string) error {
	if data.CustomerID != nil {
		customer, err := tx.GetCustomer(ctx, *data.CustomerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &NotFoundError{Resource: "customer", ID: *data.CustomerID}
			}
			return err
		}
		if customer.ShopID != conv.ShopID {
			return &ValidationError{
				Reason: fmt.Sprintf("customer does not belong to the shop of conversation %s", conv.ID),
			}
		}
	}

	if data.OrderID != nil {
		order, err := tx.GetOrder(ctx, *data.OrderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &NotFoundError{Resource: "order", ID: *data.OrderID}
			}
			return err
		}
		if order.ShopID != conv.ShopID {
			return &ValidationError{
				Reason: fmt.Sprintf("order does not belong to the shop of conversation %s", conv.ID),
			}
		}
		linked, err := tx.OrderLinked(ctx, *data.OrderID, batchIDs)
		if err != nil {
			return err
		}
		if linked {
			return &ConflictError{Reason: "order already has a conversation"}
		}
		// The same order cannot land on two conversations in one batch.
		if len(batchIDs) > 1 {
			return &ConflictError{Reason: "cannot link one order to multiple conversations"}
		}
	}

	if data.ExternalID != nil {
		taken, err := tx.ConversationIdentityTaken(ctx, conv.ShopID, conv.Platform, *data.ExternalID, batchIDs)
		if err != nil {
			return err
		}
		if taken {
			return &ConflictError{Reason: "a conversation with this external id already exists for this shop and platform"}
		}
		if len(batchIDs) > 1 {
			return &ConflictError{Reason: "cannot assign one external id to multiple conversations"}
		}
	}

	return nil
}

// BulkDelete removes the listed conversations. The guard is all-or-nothing:
// if any target still has messages, nothing is deleted and the blocking
// conversations are reported back.
func (s *ConversationService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, &ValidationError{Reason: "ids must be a non-empty list"}
	}

	var deleted int64
	err := s.store.InTx(ctx, func(tx store.Store) error {
		convs, err := tx.ConversationsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, convs); missing != "" {
			return &NotFoundError{Resource: "conversation", ID: missing}
		}

		counts, err := tx.MessageCounts(ctx, ids)
		if err != nil {
			return err
		}
		var blocking []model.BlockingConversation
		for i := range convs {
			if n := counts[convs[i].ID]; n > 0 {
				blocking = append(blocking, model.BlockingConversation{
					ID:           convs[i].ID,
					Title:        convs[i].Title,
					MessageCount: n,
				})
			}
		}
		if len(blocking) > 0 {
			return &ConflictError{
				Reason:  "conversations with messages cannot be deleted",
				Details: blocking,
			}
		}

		deleted, err = tx.DeleteConversations(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("conversations deleted", zap.Int64("deleted", deleted))
	return deleted, nil
}

// Touch records message activity on a conversation: bumps lastMessageAt and,
// for inbound messages, the unread count.
func (s *ConversationService) Touch(ctx context.Context, id string, at time.Time, inbound bool) error {
	changes := map[string]any{"last_message_at": at}
	if inbound {
		changes["unread_count"] = gorm.Expr("unread_count + 1")
	} else {
		changes["unread_count"] = 0
	}
	_, err := s.store.UpdateConversations(ctx, []string{id}, changes)
	return err
}

// conversationChanges flattens the non-nil update fields into a column map.
func conversationChanges(data *model.ConversationUpdate) map[string]any {
	changes := make(map[string]any)
	if data.Title != nil {
		changes["title"] = *data.Title
	}
	if data.ExternalID != nil {
		changes["external_id"] = *data.ExternalID
	}
	if data.IsActive != nil {
		changes["is_active"] = *data.IsActive
	}
	if data.LastMessageAt != nil {
		changes["last_message_at"] = *data.LastMessageAt
	}
	if data.UnreadCount != nil {
		changes["unread_count"] = *data.UnreadCount
	}
	if data.Tags != nil {
		changes["tags"] = datatypes.NewJSONSlice(*data.Tags)
	}
	if data.Priority != nil {
		changes["priority"] = *data.Priority
	}
	if data.Status != nil {
		changes["status"] = *data.Status
	}
	if data.CustomerID != nil {
		changes["customer_id"] = *data.CustomerID
	}
	if data.OrderID != nil {
		changes["order_id"] = *data.OrderID
	}
	return changes
}

// dedupe preserves order while dropping repeated ids.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingIDs returns the first requested id absent from the loaded set, or
// "" when everything was found.
func missingIDs(ids []string, convs []model.Conversation) string {
	found := make(map[string]struct{}, len(convs))
	for i := range convs {
		found[convs[i].ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return id
		}
	}
	return ""
}
