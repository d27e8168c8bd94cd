package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nafioutino/xamxam.io-sub000/internal/middleware"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

// ConversationHandler handles the conversation collection endpoints.
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{service: svc, logger: log}
}

// List handles GET /api/v1/conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseConversationFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.List(r.Context(), *filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/conversations.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateConversationRequest
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
	if req.Priority != nil && !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "priority must be one of LOW, NORMAL, HIGH, URGENT")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be one of OPEN, PENDING, RESOLVED, CLOSED")
		return
	}

	conv, err := h.service.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

// Get handles GET /api/v1/conversations/{id}.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateUUID("id", id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// BulkUpdate handles PATCH /api/v1/conversations.
func (h *ConversationHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.BulkUpdateConversationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must be a non-empty array")
		return
	}
	for _, id := range req.IDs {
		if err := middleware.ValidateUUID("id", id); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid conversation id %q", id))
			return
		}
	}

	if details := middleware.ValidateStruct(&req.Data); details != nil {
		writeErrorDetails(w, http.StatusBadRequest, "validation failed", details)
		return
	}
	if req.Data.Priority != nil && !req.Data.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "priority must be one of LOW, NORMAL, HIGH, URGENT")
		return
	}
	if req.Data.Status != nil && !req.Data.Status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be one of OPEN, PENDING, RESOLVED, CLOSED")
		return
	}

	count, err := h.service.BulkUpdate(r.Context(), req.IDs, &req.Data)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BulkResult{Message: "conversations updated", Count: count})
}

// BulkDelete handles DELETE /api/v1/conversations?ids=a,b,c.
func (h *ConversationHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}

	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if err := middleware.ValidateUUID("ids", id); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid conversation id %q", id))
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}

	count, err := h.service.BulkDelete(r.Context(), ids)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BulkResult{Message: "conversations deleted", Count: count})
}

// parseConversationFilter validates every query parameter field by field and
// builds the typed filter handed to the store.
func parseConversationFilter(q map[string][]string) (*store.ConversationFilter, error) {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	var f store.ConversationFilter

	for _, key := range []string{"shopId", "customerId", "orderId"} {
		if v := get(key); v != "" {
			if err := middleware.ValidateUUID(key, v); err != nil {
				return nil, err
			}
			v := v
			switch key {
			case "shopId":
				f.ShopID = &v
			case "customerId":
				f.CustomerID = &v
			case "orderId":
				f.OrderID = &v
			}
		}
	}

	if v := get("platform"); v != "" {
		p := model.Platform(v)
		if !p.Valid() {
			return nil, fmt.Errorf("platform must be one of WHATSAPP, MESSENGER, INSTAGRAM, TIKTOK")
		}
		f.Platform = &p
	}
	if v := get("status"); v != "" {
		st := model.ConversationStatus(v)
		if !st.Valid() {
			return nil, fmt.Errorf("status must be one of OPEN, PENDING, RESOLVED, CLOSED")
		}
		f.Status = &st
	}
	if v := get("priority"); v != "" {
		p := model.Priority(v)
		if !p.Valid() {
			return nil, fmt.Errorf("priority must be one of LOW, NORMAL, HIGH, URGENT")
		}
		f.Priority = &p
	}
	if v := get("isActive"); v != "" {
		switch v {
		case "true":
			b := true
			f.IsActive = &b
		case "false":
			b := false
			f.IsActive = &b
		default:
			return nil, fmt.Errorf("isActive must be \"true\" or \"false\"")
		}
	}

	f.Search = get("search")
	if v := get("tags"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if tag := strings.TrimSpace(part); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}

	f.Page = 1
	if v := get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("page must be a positive integer")
		}
		f.Page = n
	}
	f.Limit = 20
	if v := get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("limit must be an integer between 1 and 100")
		}
		f.Limit = n
	}

	f.SortBy = "lastMessageAt"
	if v := get("sortBy"); v != "" {
		if !store.ConversationSortable(v) {
			return nil, fmt.Errorf("sortBy must be one of createdAt, updatedAt, lastMessageAt, title, priority, status, unreadCount")
		}
		f.SortBy = v
	}
	f.SortOrder = "desc"
	if v := get("sortOrder"); v != "" {
		if v != "asc" && v != "desc" {
			return nil, fmt.Errorf("sortOrder must be \"asc\" or \"desc\"")
		}
		f.SortOrder = v
	}

	return &f, nil
}
