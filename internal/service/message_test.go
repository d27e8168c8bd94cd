package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store/storetest"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

func newMessageService(st *storetest.Store) (*MessageService, *ConversationService) {
	convs := NewConversationService(st, logger.NewNop())
	return NewMessageService(st, convs, nil, logger.NewNop()), convs
}

func TestSendMessage_ConversationMissing(t *testing.T) {
	svc, _ := newMessageService(seededStore())

	_, err := svc.Send(context.Background(), "ffffffff-ffff-4fff-8fff-ffffffffffff",
		&model.SendMessageRequest{Body: "hello"})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSendMessage_PersistsAndResetsUnread(t *testing.T) {
	st := seededStore()
	svc, convs := newMessageService(st)

	conv, err := convs.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
	})
	require.NoError(t, err)

	msg, err := svc.Send(context.Background(), conv.ID, &model.SendMessageRequest{Body: "your order shipped"})
	require.NoError(t, err)
	assert.Equal(t, model.DirectionOutbound, msg.Direction)
	assert.Equal(t, "your order shipped", msg.Body)

	after, err := convs.Get(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Zero(t, after.UnreadCount)
	require.NotNil(t, after.LastMessageAt)
}

func TestReceiveMessage_CreatesThreadAndCountsUnread(t *testing.T) {
	st := seededStore()
	svc, _ := newMessageService(st)

	ext := "221770000001@s.whatsapp.net"
	msg, err := svc.Receive(context.Background(), shopID, model.PlatformWhatsApp, ext, "salam")
	require.NoError(t, err)
	assert.Equal(t, model.DirectionInbound, msg.Direction)

	// Second inbound reuses the same thread.
	_, err = svc.Receive(context.Background(), shopID, model.PlatformWhatsApp, ext, "nanga def")
	require.NoError(t, err)

	conv, err := st.GetConversationByIdentity(context.Background(), shopID, model.PlatformWhatsApp, ext)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCount)

	resp, err := svc.List(context.Background(), conv.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Messages, 2)
	assert.False(t, resp.HasMore)
}

func TestListMessages_Paging(t *testing.T) {
	st := seededStore()
	svc, convs := newMessageService(st)

	conv, err := convs.Create(context.Background(), &model.CreateConversationRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), conv.ID, &model.SendMessageRequest{Body: "msg"})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), conv.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Messages, 2)
	assert.True(t, resp.HasMore)

	resp, err = svc.List(context.Background(), conv.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Messages, 1)
	assert.False(t, resp.HasMore)
}
