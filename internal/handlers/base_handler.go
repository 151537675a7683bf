package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flashcards/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps an error kind to a status code and sends it
//
// Internal failures are logged and answered with "fallback" so storage details never reach the client.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		h.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.Logger.Error(fallback, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, fallback)
	}
}
