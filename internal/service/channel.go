package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/internal/whatsapp"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/metrics"
)

// ErrEngineUnavailable is returned when the WhatsApp engine bridge is down.
var ErrEngineUnavailable = errors.New("whatsapp engine unavailable")

// ChannelService manages a shop's connected messaging channels and
// orchestrates WhatsApp pairing against the external engine.
type ChannelService struct {
	store  store.Store
	bridge *whatsapp.Bridge
	logger *logger.Logger
}

// NewChannelService creates a new channel service.
func NewChannelService(st store.Store, bridge *whatsapp.Bridge, log *logger.Logger) *ChannelService {
	return &ChannelService{store: st, bridge: bridge, logger: log}
}

// List returns every channel configured for a shop.
func (s *ChannelService) List(ctx context.Context, shopID string) ([]model.Channel, error) {
	if _, err := s.store.GetShop(ctx, shopID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "shop", ID: shopID}
		}
		return nil, err
	}
	chans, err := s.store.ListChannels(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if chans == nil {
		chans = []model.Channel{}
	}
	return chans, nil
}

// Connect registers a channel for a shop. Channels that carry an external id
// up front (Messenger pages, Instagram and TikTok accounts) are connected
// immediately; WhatsApp channels start disconnected until pairing completes.
func (s *ChannelService) Connect(ctx context.Context, req *model.ConnectChannelRequest) (*model.Channel, error) {
	if _, err := s.store.GetShop(ctx, req.ShopID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "shop", ID: req.ShopID}
		}
		return nil, err
	}

	ch, err := s.store.GetChannel(ctx, req.ShopID, req.Platform)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ch = &model.Channel{
			ID:       uuid.NewString(),
			ShopID:   req.ShopID,
			Platform: req.Platform,
		}
	}

	if req.ExternalID != nil {
		ch.ExternalID = req.ExternalID
		ch.Connected = true
	}

	if err := s.store.SaveChannel(ctx, ch); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Reason: "channel already exists for this shop and platform"}
		}
		return nil, err
	}

	s.logger.Info("channel connected",
		zap.String("shop_id", ch.ShopID),
		zap.String("platform", string(ch.Platform)),
	)
	return ch, nil
}

// StartPairing opens a WhatsApp pairing session with the engine and returns
// the session id the client should stream events for.
func (s *ChannelService) StartPairing(ctx context.Context, shopID string) (string, error) {
	if s.bridge == nil || !s.bridge.IsConnected() {
		return "", ErrEngineUnavailable
	}

	// Make sure the channel row exists so there is something to attach the
	// paired identity to.
	if _, err := s.Connect(ctx, &model.ConnectChannelRequest{
		ShopID:   shopID,
		Platform: model.PlatformWhatsApp,
	}); err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	if err := s.bridge.StartSession(ctx, sessionID, shopID); err != nil {
		return "", err
	}

	metrics.PairingSessionsStarted.Inc()
	s.logger.Info("pairing session started",
		zap.String("shop_id", shopID),
		zap.String("session_id", sessionID),
	)
	return sessionID, nil
}

// PairingEvents subscribes to the engine events for one session.
func (s *ChannelService) PairingEvents(sessionID string) (<-chan whatsapp.Event, func(), error) {
	if s.bridge == nil || !s.bridge.IsConnected() {
		return nil, nil, ErrEngineUnavailable
	}
	return s.bridge.SessionEvents(sessionID)
}

// CompletePairing persists the paired account identity reported by the
// engine onto the shop's WhatsApp channel.
func (s *ChannelService) CompletePairing(ctx context.Context, ev whatsapp.Event) error {
	if ev.Type != whatsapp.EventConnected || ev.JID == "" {
		return errors.New("not a connected event")
	}
	err := s.store.SetChannelIdentity(ctx, ev.ShopID, model.PlatformWhatsApp, ev.JID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "channel", ID: ev.ShopID}
		}
		return err
	}

	metrics.PairingSessionsCompleted.Inc()
	s.logger.Info("whatsapp paired",
		zap.String("shop_id", ev.ShopID),
		zap.String("jid", ev.JID),
	)
	return nil
}
