package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/social"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/metrics"
)

// PublishService pushes social posts to the configured platforms and records
// every attempt.
type PublishService struct {
	store      store.Store
	publishers map[model.Platform]social.Publisher
	logger     *logger.Logger
}

// NewPublishService creates a new publish service.
func NewPublishService(st store.Store, publishers map[model.Platform]social.Publisher, log *logger.Logger) *PublishService {
	return &PublishService{store: st, publishers: publishers, logger: log}
}

// Publish validates the request, calls the platform client and records the
// resulting publication, failed attempts included.
func (s *PublishService) Publish(ctx context.Context, req *model.PublishRequest) (*model.Publication, error) {
	if _, err := s.store.GetShop(ctx, req.ShopID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "shop", ID: req.ShopID}
		}
		return nil, err
	}

	if req.ProductID != nil {
		product, err := s.store.GetProduct(ctx, *req.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &NotFoundError{Resource: "product", ID: *req.ProductID}
			}
			return nil, err
		}
		if product.ShopID != req.ShopID {
			return nil, &ValidationError{Reason: "product does not belong to this shop"}
		}
	}

	publisher, ok := s.publishers[req.Platform]
	if !ok {
		return nil, &ValidationError{Reason: "publishing is not configured for this platform"}
	}

	pub := &model.Publication{
		ID:        uuid.NewString(),
		ShopID:    req.ShopID,
		Platform:  req.Platform,
		ProductID: req.ProductID,
		Caption:   req.Caption,
		MediaURL:  req.MediaURL,
		Status:    model.PublicationPublished,
	}

	post := social.Post{Caption: req.Caption}
	if req.MediaURL != nil {
		post.MediaURL = *req.MediaURL
	}

	externalID, err := publisher.Publish(ctx, post)
	if err != nil {
		reason := err.Error()
		pub.Status = model.PublicationFailed
		pub.Error = &reason
		metrics.PublicationsTotal.WithLabelValues(string(req.Platform), "failed").Inc()
		s.logger.Warn("publication failed",
			zap.String("shop_id", req.ShopID),
			zap.String("platform", string(req.Platform)),
			zap.Error(err),
		)
	} else {
		pub.ExternalID = &externalID
		metrics.PublicationsTotal.WithLabelValues(string(req.Platform), "published").Inc()
	}

	if storeErr := s.store.CreatePublication(ctx, pub); storeErr != nil {
		return nil, storeErr
	}
	if err != nil {
		return pub, &UpstreamError{Reason: "platform rejected the post", Details: pub}
	}
	return pub, nil
}
