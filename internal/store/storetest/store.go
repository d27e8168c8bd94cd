// Package storetest provides an in-memory Store used by the service and
// handler tests. It mirrors the MySQL uniqueness rules so conflict paths can
// be exercised without a database.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
)

// Store is an in-memory store.Store implementation.
type Store struct {
	mu sync.Mutex

	Shops         map[string]*model.Shop
	Customers     map[string]*model.Customer
	Orders        map[string]*model.Order
	OrderItems    []model.OrderItem
	Categories    map[string]*model.Category
	Products      map[string]*model.Product
	Conversations map[string]*model.Conversation
	Messages      []model.Message
	Channels      map[string]*model.Channel
	Publications  []*model.Publication
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		Shops:         make(map[string]*model.Shop),
		Customers:     make(map[string]*model.Customer),
		Orders:        make(map[string]*model.Order),
		Categories:    make(map[string]*model.Category),
		Products:      make(map[string]*model.Product),
		Conversations: make(map[string]*model.Conversation),
		Channels:      make(map[string]*model.Channel),
	}
}

var _ store.Store = (*Store)(nil)

// InTx runs fn against the same store. Rollback is not simulated; the tests
// that exercise transactional aborts fail before any mutation.
func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	return fn(s)
}

func (s *Store) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListConversations(ctx context.Context, f store.ConversationFilter) ([]model.Conversation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Conversation
	for _, c := range s.Conversations {
		if !matchesConversation(c, f) {
			continue
		}
		matched = append(matched, *c)
	}

	sort.Slice(matched, func(i, j int) bool {
		less := conversationLess(&matched[i], &matched[j], f.SortBy)
		if f.SortOrder == "asc" {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchesConversation(c *model.Conversation, f store.ConversationFilter) bool {
	if f.ShopID != nil && c.ShopID != *f.ShopID {
		return false
	}
	if f.CustomerID != nil && (c.CustomerID == nil || *c.CustomerID != *f.CustomerID) {
		return false
	}
	if f.OrderID != nil && (c.OrderID == nil || *c.OrderID != *f.OrderID) {
		return false
	}
	if f.Platform != nil && c.Platform != *f.Platform {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Priority != nil && c.Priority != *f.Priority {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		needle := strings.ToLower(s)
		title := ""
		if c.Title != nil {
			title = strings.ToLower(*c.Title)
		}
		ext := ""
		if c.ExternalID != nil {
			ext = strings.ToLower(*c.ExternalID)
		}
		if !strings.Contains(title, needle) && !strings.Contains(ext, needle) {
			return false
		}
	}
	if len(f.Tags) > 0 {
		any := false
		for _, want := range f.Tags {
			for _, have := range c.Tags {
				if have == want {
					any = true
				}
			}
		}
		if !any {
			return false
		}
	}
	return true
}

func conversationLess(a, b *model.Conversation, sortBy string) bool {
	switch sortBy {
	case "unreadCount":
		return a.UnreadCount < b.UnreadCount
	case "title":
		at, bt := "", ""
		if a.Title != nil {
			at = *a.Title
		}
		if b.Title != nil {
			bt = *b.Title
		}
		return at < bt
	case "lastMessageAt":
		if a.LastMessageAt == nil {
			return true
		}
		if b.LastMessageAt == nil {
			return false
		}
		return a.LastMessageAt.Before(*b.LastMessageAt)
	case "updatedAt":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (s *Store) ConversationsByIDs(ctx context.Context, ids []string) ([]model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Conversation
	for _, id := range ids {
		if c, ok := s.Conversations[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *Store) CreateConversation(ctx context.Context, c *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Conversations {
		if c.ExternalID != nil && existing.ExternalID != nil &&
			existing.ShopID == c.ShopID && existing.Platform == c.Platform &&
			*existing.ExternalID == *c.ExternalID {
			return store.ErrDuplicate
		}
		if c.OrderID != nil && existing.OrderID != nil && *existing.OrderID == *c.OrderID {
			return store.ErrDuplicate
		}
	}
	cp := *c
	s.Conversations[c.ID] = &cp
	return nil
}

func (s *Store) UpdateConversations(ctx context.Context, ids []string, changes map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		c, ok := s.Conversations[id]
		if !ok {
			continue
		}
		applyConversationChanges(c, changes)
		n++
	}
	return n, nil
}

func applyConversationChanges(c *model.Conversation, changes map[string]any) {
	for col, v := range changes {
		switch col {
		case "title":
			t := v.(string)
			c.Title = &t
		case "external_id":
			e := v.(string)
			c.ExternalID = &e
		case "is_active":
			c.IsActive = v.(bool)
		case "last_message_at":
			at := v.(time.Time)
			c.LastMessageAt = &at
		case "unread_count":
			if _, ok := v.(clause.Expr); ok {
				c.UnreadCount++
			} else {
				c.UnreadCount = v.(int)
			}
		case "tags":
			c.Tags = v.(datatypes.JSONSlice[string])
		case "priority":
			c.Priority = v.(model.Priority)
		case "status":
			c.Status = v.(model.ConversationStatus)
		case "customer_id":
			id := v.(string)
			c.CustomerID = &id
		case "order_id":
			id := v.(string)
			c.OrderID = &id
		}
	}
}

func (s *Store) DeleteConversations(ctx context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.Conversations[id]; ok {
			delete(s.Conversations, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ConversationIdentityTaken(ctx context.Context, shopID string, platform model.Platform, externalID string, excludeIDs []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := toSet(excludeIDs)
	for _, c := range s.Conversations {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		if c.ShopID == shopID && c.Platform == platform && c.ExternalID != nil && *c.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetConversationByIdentity(ctx context.Context, shopID string, platform model.Platform, externalID string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Conversations {
		if c.ShopID == shopID && c.Platform == platform && c.ExternalID != nil && *c.ExternalID == externalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) OrderLinked(ctx context.Context, orderID string, excludeIDs []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := toSet(excludeIDs)
	for _, c := range s.Conversations {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		if c.OrderID != nil && *c.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) MessageCounts(ctx context.Context, conversationIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(conversationIDs)
	counts := make(map[string]int64)
	for i := range s.Messages {
		if _, ok := wanted[s.Messages[i].ConversationID]; ok {
			counts[s.Messages[i].ConversationID]++
		}
	}
	return counts, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []model.Message
	for i := range s.Messages {
		if s.Messages[i].ConversationID == conversationID {
			msgs = append(msgs, s.Messages[i])
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SentAt.Before(msgs[j].SentAt) })
	if offset >= len(msgs) {
		return nil, nil
	}
	msgs = msgs[offset:]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, *m)
	return nil
}

func (s *Store) GetShop(ctx context.Context, id string) (*model.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.Shops[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListProducts(ctx context.Context, f store.ProductFilter) ([]model.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Product
	for _, p := range s.Products {
		if f.ShopID != nil && p.ShopID != *f.ShopID {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.IsPublished != nil && p.IsPublished != *f.IsPublished {
			continue
		}
		if needle := strings.ToLower(strings.TrimSpace(f.Search)); needle != "" {
			sku := ""
			if p.SKU != nil {
				sku = strings.ToLower(*p.SKU)
			}
			if !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(sku, needle) {
				continue
			}
		}
		matched = append(matched, *p)
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "name":
			less = matched[i].Name < matched[j].Name
		case "price":
			less = matched[i].Price < matched[j].Price
		case "stock":
			less = matched[i].Stock < matched[j].Stock
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if f.SortOrder == "asc" {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Products {
		if p.SKU != nil && existing.SKU != nil && existing.ShopID == p.ShopID && *existing.SKU == *p.SKU {
			return store.ErrDuplicate
		}
	}
	cp := *p
	s.Products[p.ID] = &cp
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[id]
	if !ok {
		return store.ErrNotFound
	}
	for col, v := range changes {
		switch col {
		case "category_id":
			c := v.(string)
			p.CategoryID = &c
		case "name":
			p.Name = v.(string)
		case "description":
			d := v.(string)
			p.Description = &d
		case "sku":
			sku := v.(string)
			p.SKU = &sku
		case "price":
			p.Price = v.(int64)
		case "stock":
			p.Stock = v.(int64)
		case "image_url":
			u := v.(string)
			p.ImageURL = &u
		case "is_published":
			p.IsPublished = v.(bool)
		}
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.Products, id)
	return nil
}

func (s *Store) ProductSKUTaken(ctx context.Context, shopID, sku, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Products {
		if p.ID == excludeID {
			continue
		}
		if p.ShopID == shopID && p.SKU != nil && *p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) OrderItemCount(ctx context.Context, productID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.OrderItems {
		if s.OrderItems[i].ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListChannels(ctx context.Context, shopID string) ([]model.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Channel
	for _, ch := range s.Channels {
		if ch.ShopID == shopID {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func (s *Store) GetChannel(ctx context.Context, shopID string, platform model.Platform) (*model.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.Channels {
		if ch.ShopID == shopID && ch.Platform == platform {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) SaveChannel(ctx context.Context, ch *model.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Channels {
		if existing.ID != ch.ID && existing.ShopID == ch.ShopID && existing.Platform == ch.Platform {
			return store.ErrDuplicate
		}
	}
	cp := *ch
	s.Channels[ch.ID] = &cp
	return nil
}

func (s *Store) SetChannelIdentity(ctx context.Context, shopID string, platform model.Platform, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.Channels {
		if ch.ShopID == shopID && ch.Platform == platform {
			ch.ExternalID = &externalID
			ch.Connected = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreatePublication(ctx context.Context, p *model.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.Publications = append(s.Publications, &cp)
	return nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
