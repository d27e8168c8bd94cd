package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/middleware"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/internal/whatsapp"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/metrics"
)

// ChannelHandler handles channel management and WhatsApp pairing endpoints.
type ChannelHandler struct {
	service *service.ChannelService
	logger  *logger.Logger
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(svc *service.ChannelService, log *logger.Logger) *ChannelHandler {
	return &ChannelHandler{service: svc, logger: log}
}

// List handles GET /api/v1/channels. The shop defaults to the one the token
// is scoped to; ?shopId overrides it.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID := r.URL.Query().Get("shopId")
	if shopID == "" {
		shopID = middleware.GetShopID(r.Context())
	}
	if err := middleware.ValidateUUID("shopId", shopID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chans, err := h.service.List(r.Context(), shopID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"channels": chans})
}

// Connect handles POST /api/v1/channels.
func (h *ChannelHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req model.ConnectChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ShopID == "" {
		req.ShopID = middleware.GetShopID(r.Context())
	}
	if details := middleware.ValidateStruct(&req); details != nil {
		writeErrorDetails(w, http.StatusBadRequest, "validation failed", details)
		return
	}
	if !req.Platform.Valid() {
		writeError(w, http.StatusBadRequest, "platform must be one of WHATSAPP, MESSENGER, INSTAGRAM, TIKTOK")
		return
	}

	ch, err := h.service.Connect(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

// StartPairing handles POST /api/v1/channels/whatsapp/pair.
func (h *ChannelHandler) StartPairing(w http.ResponseWriter, r *http.Request) {
	shopID := middleware.GetShopID(r.Context())
	if err := middleware.ValidateUUID("shopId", shopID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID, err := h.service.StartPairing(r.Context(), shopID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"sessionId": sessionID})
}

// PairingStream handles GET /api/v1/channels/whatsapp/pair/{session}.
// Streams qr, connected and error events from the engine as SSE until the
// session resolves or the client disconnects.
func (h *ChannelHandler) PairingStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session")
	if _, err := uuid.Parse(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, "session must be a valid UUID")
		return
	}

	events, cancel, err := h.service.PairingEvents(sessionID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.PairingStreamsActive.Inc()
	defer metrics.PairingStreamsActive.Dec()

	sendSSEEvent(w, flusher, "open", map[string]string{"sessionId": sessionID})

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("pairing stream client disconnected",
				zap.String("session_id", sessionID))
			return

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", map[string]int64{
				"ts": time.Now().Unix(),
			})

		case ev, open := <-events:
			if !open {
				return
			}
			switch ev.Type {
			case whatsapp.EventQR:
				sendSSEEvent(w, flusher, "qr", ev)

			case whatsapp.EventConnected:
				if err := h.service.CompletePairing(ctx, ev); err != nil {
					h.logger.Error("failed to persist paired identity",
						zap.String("session_id", sessionID), zap.Error(err))
					sendSSEEvent(w, flusher, "error", whatsapp.Event{
						Type:      whatsapp.EventError,
						SessionID: sessionID,
						Reason:    "failed to persist paired identity",
					})
					return
				}
				sendSSEEvent(w, flusher, "connected", ev)
				return

			case whatsapp.EventError:
				sendSSEEvent(w, flusher, "error", ev)
				return
			}
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
