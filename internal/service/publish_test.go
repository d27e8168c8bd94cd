package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/social"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

type fakePublisher struct {
	externalID string
	err        error
	calls      int
}

func (f *fakePublisher) Publish(ctx context.Context, post social.Post) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.externalID, nil
}

func TestPublish_RecordsSuccess(t *testing.T) {
	st := seededStore()
	pub := &fakePublisher{externalID: "post-1"}
	svc := NewPublishService(st, map[model.Platform]social.Publisher{
		model.PlatformInstagram: pub,
	}, logger.NewNop())

	res, err := svc.Publish(context.Background(), &model.PublishRequest{
		ShopID:   shopID,
		Platform: model.PlatformInstagram,
		Caption:  "new arrivals",
		MediaURL: ptr("https://cdn.example.com/fabric.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PublicationPublished, res.Status)
	require.NotNil(t, res.ExternalID)
	assert.Equal(t, "post-1", *res.ExternalID)
	assert.Equal(t, 1, pub.calls)

	require.Len(t, st.Publications, 1)
	assert.Equal(t, model.PublicationPublished, st.Publications[0].Status)
}

func TestPublish_RecordsFailureAndReturnsUpstreamError(t *testing.T) {
	st := seededStore()
	svc := NewPublishService(st, map[model.Platform]social.Publisher{
		model.PlatformInstagram: &fakePublisher{err: errors.New("rate limited")},
	}, logger.NewNop())

	_, err := svc.Publish(context.Background(), &model.PublishRequest{
		ShopID:   shopID,
		Platform: model.PlatformInstagram,
		Caption:  "new arrivals",
	})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)

	require.Len(t, st.Publications, 1)
	assert.Equal(t, model.PublicationFailed, st.Publications[0].Status)
	require.NotNil(t, st.Publications[0].Error)
	assert.Contains(t, *st.Publications[0].Error, "rate limited")
}

func TestPublish_UnconfiguredPlatform(t *testing.T) {
	svc := NewPublishService(seededStore(), nil, logger.NewNop())

	_, err := svc.Publish(context.Background(), &model.PublishRequest{
		ShopID:   shopID,
		Platform: model.PlatformTikTok,
		Caption:  "new arrivals",
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestPublish_ProductFromOtherShop(t *testing.T) {
	st := seededStore()
	products := newProductService(st)
	p, err := products.Create(context.Background(), &model.CreateProductRequest{
		ShopID: otherShopID,
		Name:   "wax print fabric",
		Price:  150000,
	})
	require.NoError(t, err)

	svc := NewPublishService(st, map[model.Platform]social.Publisher{
		model.PlatformInstagram: &fakePublisher{externalID: "x"},
	}, logger.NewNop())

	_, err = svc.Publish(context.Background(), &model.PublishRequest{
		ShopID:    shopID,
		Platform:  model.PlatformInstagram,
		ProductID: &p.ID,
		Caption:   "new arrivals",
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, st.Publications)
}
