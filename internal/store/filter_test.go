package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationFilterNormalize(t *testing.T) {
	var f ConversationFilter
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "lastMessageAt", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)

	f = ConversationFilter{Page: 3, Limit: 50, SortBy: "title", SortOrder: "asc"}
	f.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.Limit)
	assert.Equal(t, "title", f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)

	f = ConversationFilter{Limit: 500, SortOrder: "DESC"}
	f.Normalize()
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "desc", f.SortOrder)
}

func TestConversationSortable(t *testing.T) {
	for _, field := range []string{"createdAt", "updatedAt", "lastMessageAt", "title", "priority", "status", "unreadCount"} {
		assert.True(t, ConversationSortable(field), field)
	}
	for _, field := range []string{"password", "shop_id", "created_at", ""} {
		assert.False(t, ConversationSortable(field), field)
	}
}

func TestProductSortable(t *testing.T) {
	for _, field := range []string{"createdAt", "updatedAt", "name", "price", "stock"} {
		assert.True(t, ProductSortable(field), field)
	}
	assert.False(t, ProductSortable("sku"))
}

func TestConversationFilterOrder(t *testing.T) {
	f := ConversationFilter{SortBy: "unreadCount", SortOrder: "asc"}
	assert.Equal(t, "unread_count asc", f.order())

	f = ConversationFilter{SortBy: "bogus", SortOrder: "desc"}
	assert.Equal(t, "last_message_at desc", f.order())
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 20))
	assert.Equal(t, 1, Pages(1, 20))
	assert.Equal(t, 1, Pages(20, 20))
	assert.Equal(t, 2, Pages(21, 20))
	assert.Equal(t, 0, Pages(10, 0))
}
