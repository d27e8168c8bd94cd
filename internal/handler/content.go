package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nafioutino/xamxam.io-sub000/internal/middleware"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

// ContentHandler handles AI content generation and social publishing.
type ContentHandler struct {
	content *service.ContentService
	publish *service.PublishService
	logger  *logger.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(content *service.ContentService, publish *service.PublishService, log *logger.Logger) *ContentHandler {
	return &ContentHandler{content: content, publish: publish, logger: log}
}

// Generate handles POST /api/v1/content/generate.
func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if details := middleware.ValidateStruct(&req); details != nil {
		writeErrorDetails(w, http.StatusBadRequest, "validation failed", details)
		return
	}
	if !req.Platform.Valid() {
		writeError(w, http.StatusBadRequest, "platform must be one of WHATSAPP, MESSENGER, INSTAGRAM, TIKTOK")
		return
	}

	content, err := h.content.Generate(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, content)
}

// Publish handles POST /api/v1/publish.
func (h *ContentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req model.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if details := middleware.ValidateStruct(&req); details != nil {
		writeErrorDetails(w, http.StatusBadRequest, "validation failed", details)
		return
	}
	if !req.Platform.Valid() {
		writeError(w, http.StatusBadRequest, "platform must be one of WHATSAPP, MESSENGER, INSTAGRAM, TIKTOK")
		return
	}

	pub, err := h.publish.Publish(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, pub)
}
