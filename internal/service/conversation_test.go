package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/internal/store/storetest"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

const (
	shopID      = "5b6962dd-3f90-4c93-8f61-eeafe4a52e07"
	otherShopID = "9f8b7a6c-1d2e-4f3a-8b9c-0d1e2f3a4b5c"
	customerID  = "1a2b3c4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"
	orderID     = "2b3c4d5e-6f7a-4b9c-8d0e-1f2a3b4c5d6e"
)

func ptr[T any](v T) *T { return &v }

func seededStore() *storetest.Store {
	st := storetest.New()
	st.Shops[shopID] = &model.Shop{ID: shopID, Name: "Dakar Deals", Slug: "dakar-deals"}
	st.Shops[otherShopID] = &model.Shop{ID: otherShopID, Name: "Thies Trade", Slug: "thies-trade"}
	st.Customers[customerID] = &model.Customer{ID: customerID, ShopID: shopID}
	st.Orders[orderID] = &model.Order{ID: orderID, ShopID: shopID, Number: "ORD-001"}
	return st
}

func newConversationService(st store.Store) *ConversationService {
	return NewConversationService(st, logger.NewNop())
}

func TestCreateConversation_ShopMissing(t *testing.T) {
	svc := newConversationService(storetest.New())

	_, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "shop", notFound.Resource)
}

func TestCreateConversation_CustomerFromOtherShop(t *testing.T) {
	st := seededStore()
	st.Customers[customerID].ShopID = otherShopID
	svc := newConversationService(st)

	_, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:     shopID,
		Platform:   model.PlatformWhatsApp,
		CustomerID: ptr(customerID),
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCreateConversation_OrderAlreadyLinked(t *testing.T) {
	st := seededStore()
	svc := newConversationService(st)

	_, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
		OrderID:  ptr(orderID),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformMessenger,
		OrderID:  ptr(orderID),
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCreateConversation_DuplicateIdentity(t *testing.T) {
	st := seededStore()
	svc := newConversationService(st)

	_, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:     shopID,
		Platform:   model.PlatformWhatsApp,
		ExternalID: ptr("221770000001@s.whatsapp.net"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:     shopID,
		Platform:   model.PlatformWhatsApp,
		ExternalID: ptr("221770000001@s.whatsapp.net"),
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Same external id on another platform is a different identity.
	_, err = svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:     shopID,
		Platform:   model.PlatformMessenger,
		ExternalID: ptr("221770000001@s.whatsapp.net"),
	})
	assert.NoError(t, err)
}

func TestCreateConversation_Defaults(t *testing.T) {
	svc := newConversationService(seededStore())

	conv, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
	})
	require.NoError(t, err)

	assert.True(t, conv.IsActive)
	assert.Equal(t, model.PriorityNormal, conv.Priority)
	assert.Equal(t, model.StatusOpen, conv.Status)
	assert.NotNil(t, conv.Tags)
	assert.Empty(t, conv.Tags)
	assert.Zero(t, conv.UnreadCount)
}

func TestCreateConversation_NoExternalIDRepeats(t *testing.T) {
	svc := newConversationService(seededStore())

	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), &model.CreateConversationRequest{
			ShopID:   shopID,
			Platform: model.PlatformWhatsApp,
		})
		require.NoError(t, err)
	}
}

func TestBulkUpdate_Validation(t *testing.T) {
	svc := newConversationService(seededStore())

	var validation *ValidationError

	_, err := svc.BulkUpdate(context.Background(), nil, &model.ConversationUpdate{Status: ptr(model.StatusClosed)})
	require.ErrorAs(t, err, &validation)

	_, err = svc.BulkUpdate(context.Background(), []string{customerID}, &model.ConversationUpdate{})
	require.ErrorAs(t, err, &validation)
}

func TestBulkUpdate_MissingTargetAbortsBatch(t *testing.T) {
	st := seededStore()
	svc := newConversationService(st)

	conv, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
	})
	require.NoError(t, err)

	_, err = svc.BulkUpdate(context.Background(),
		[]string{conv.ID, "ffffffff-ffff-4fff-8fff-ffffffffffff"},
		&model.ConversationUpdate{Status: ptr(model.StatusClosed)},
	)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	unchanged, err := svc.Get(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, unchanged.Status)
}

func TestBulkUpdate_AppliesToEveryTarget(t *testing.T) {
	st := seededStore()
	svc := newConversationService(st)

	var ids []string
	for _, p := range []model.Platform{model.PlatformWhatsApp, model.PlatformMessenger} {
		conv, err := svc.Create(context.Background(), &model.CreateConversationRequest{
			ShopID:   shopID,
			Platform: p,
		})
		require.NoError(t, err)
		ids = append(ids, conv.ID)
	}

	n, err := svc.BulkUpdate(context.Background(), ids, &model.ConversationUpdate{
		Status:   ptr(model.StatusResolved),
		Priority: ptr(model.PriorityHigh),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, id := range ids {
		conv, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusResolved, conv.Status)
		assert.Equal(t, model.PriorityHigh, conv.Priority)
	}
}

func TestBulkUpdate_ExternalIDOnMultipleTargets(t *testing.T) {
	svc := newConversationService(seededStore())

	var ids []string
	for i := 0; i < 2; i++ {
		conv, err := svc.Create(context.Background(), &model.CreateConversationRequest{
			ShopID:   shopID,
			Platform: model.PlatformWhatsApp,
		})
		require.NoError(t, err)
		ids = append(ids, conv.ID)
	}

	_, err := svc.BulkUpdate(context.Background(), ids, &model.ConversationUpdate{
		ExternalID: ptr("221770000002@s.whatsapp.net"),
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestBulkDelete_BlockedByMessages(t *testing.T) {
	st := seededStore()
	svc := newConversationService(st)

	withMsgs, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
		Title:    ptr("haggling over fabric"),
	})
	require.NoError(t, err)
	empty, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformMessenger,
	})
	require.NoError(t, err)

	require.NoError(t, st.CreateMessage(context.Background(), &model.Message{
		ID:             "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f",
		ConversationID: withMsgs.ID,
		Direction:      model.DirectionInbound,
		Body:           "nanga def",
	}))

	_, err = svc.BulkDelete(context.Background(), []string{withMsgs.ID, empty.ID})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	blocking, ok := conflict.Details.([]model.BlockingConversation)
	require.True(t, ok)
	require.Len(t, blocking, 1)
	assert.Equal(t, withMsgs.ID, blocking[0].ID)
	assert.EqualValues(t, 1, blocking[0].MessageCount)

	// Nothing was deleted, the empty one included.
	_, err = svc.Get(context.Background(), empty.ID)
	assert.NoError(t, err)
}

func TestBulkDelete_RemovesAllTargets(t *testing.T) {
	svc := newConversationService(seededStore())

	var ids []string
	for _, p := range []model.Platform{model.PlatformWhatsApp, model.PlatformTikTok} {
		conv, err := svc.Create(context.Background(), &model.CreateConversationRequest{
			ShopID:   shopID,
			Platform: p,
		})
		require.NoError(t, err)
		ids = append(ids, conv.ID)
	}

	n, err := svc.BulkDelete(context.Background(), ids)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, id := range ids {
		_, err := svc.Get(context.Background(), id)
		var notFound *NotFoundError
		assert.ErrorAs(t, err, &notFound)
	}
}

func TestListConversations_TagAnyOf(t *testing.T) {
	svc := newConversationService(seededStore())

	tagged, err := svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
		Tags:     []string{"vip", "wholesale"},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformMessenger,
		Tags:     []string{"retail"},
	})
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), store.ConversationFilter{
		Tags: []string{"vip", "unused"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, tagged.ID, resp.Conversations[0].ID)
	assert.EqualValues(t, 1, resp.Pagination.Total)
}

func TestListConversations_PaginationMetadata(t *testing.T) {
	svc := newConversationService(seededStore())

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), &model.CreateConversationRequest{
			ShopID:   shopID,
			Platform: model.PlatformWhatsApp,
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), store.ConversationFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Conversations, 1)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.Limit)
	assert.EqualValues(t, 3, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Pages)
}
