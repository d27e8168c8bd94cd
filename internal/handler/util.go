// Package handler provides the HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeErrorDetails writes a JSON error response with an itemized payload.
func writeErrorDetails(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// respondServiceError maps service errors onto the response taxonomy:
// 400 validation, 404 missing reference, 409 conflict, 502 upstream, and a
// logged generic 500 for everything else.
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var (
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
		validation *service.ValidationError
		upstream   *service.UpstreamError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		writeErrorDetails(w, http.StatusConflict, conflict.Reason, conflict.Details)
	case errors.As(err, &validation):
		writeErrorDetails(w, http.StatusBadRequest, validation.Reason, validation.Details)
	case errors.As(err, &upstream):
		writeErrorDetails(w, http.StatusBadGateway, upstream.Reason, upstream.Details)
	case errors.Is(err, service.ErrLLMDisabled), errors.Is(err, service.ErrEngineUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
