package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
)

// conversationSortColumns whitelists sortable fields and maps the API names
// to columns. Anything outside this map is rejected at parse time.
var conversationSortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"lastMessageAt": "last_message_at",
	"title":         "title",
	"priority":      "priority",
	"status":        "status",
	"unreadCount":   "unread_count",
}

// ConversationSortable reports whether field is an accepted sortBy value.
func ConversationSortable(field string) bool {
	_, ok := conversationSortColumns[field]
	return ok
}

// ConversationFilter is the typed predicate for listing conversations. Nil
// fields do not constrain the result. Every field is validated by the handler
// before the filter reaches the store.
type ConversationFilter struct {
	ShopID     *string
	CustomerID *string
	OrderID    *string
	Platform   *model.Platform
	Status     *model.ConversationStatus
	Priority   *model.Priority
	IsActive   *bool
	Search     string
	Tags       []string

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize fills paging and sorting defaults.
func (f *ConversationFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.SortBy == "" {
		f.SortBy = "lastMessageAt"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

// apply translates the filter into GORM clauses.
func (f ConversationFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ShopID != nil {
		q = q.Where("shop_id = ?", *f.ShopID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.OrderID != nil {
		q = q.Where("order_id = ?", *f.OrderID)
	}
	if f.Platform != nil {
		q = q.Where("platform = ?", *f.Platform)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(external_id) LIKE ?", like, like)
	}
	if len(f.Tags) > 0 {
		// Any-of semantics over the JSON tags column.
		conds := make([]string, 0, len(f.Tags))
		args := make([]any, 0, len(f.Tags))
		for _, tag := range f.Tags {
			conds = append(conds, "JSON_CONTAINS(tags, JSON_QUOTE(?))")
			args = append(args, tag)
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	return q
}

func (f ConversationFilter) order() string {
	col := conversationSortColumns[f.SortBy]
	if col == "" {
		col = "last_message_at"
	}
	return fmt.Sprintf("%s %s", col, f.SortOrder)
}

// ProductFilter is the typed predicate for listing products.
type ProductFilter struct {
	ShopID      *string
	CategoryID  *string
	IsPublished *bool
	Search      string

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

var productSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
}

// ProductSortable reports whether field is an accepted sortBy value.
func ProductSortable(field string) bool {
	_, ok := productSortColumns[field]
	return ok
}

// Normalize fills paging and sorting defaults.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ShopID != nil {
		q = q.Where("shop_id = ?", *f.ShopID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.IsPublished != nil {
		q = q.Where("is_published = ?", *f.IsPublished)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	return q
}

func (f ProductFilter) order() string {
	col := productSortColumns[f.SortBy]
	if col == "" {
		col = "created_at"
	}
	return fmt.Sprintf("%s %s", col, f.SortOrder)
}

// Pages computes the page count for a total at the given limit.
func Pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
