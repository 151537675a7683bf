package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/flashcards/backend/internal/auth"
	"github.com/flashcards/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewService is the interface that wraps methods for spaced-repetition business logic.
type ReviewService interface {
	// Method Review grade a card for the user and return the rescheduled progress.
	//
	// "grade" parameter must be one of AGAIN, HARD, GOOD, EASY.
	// "timeTakenMs" parameter is optional and does not affect scheduling.
	// Errors wrap models.ErrInvalidInput, models.ErrNotFound or models.ErrConflict depending on their kind.
	Review(ctx context.Context, userID, cardID int, grade string, timeTakenMs *int) (*models.ReviewResponse, error)
	// Method GetProgress retrieve the stored progress of a card without creating one.
	GetProgress(ctx context.Context, userID, cardID int) (*models.ReviewResponse, error)
	// Method ListDue retrieve up to "limit" progress records due now, earliest first.
	//
	// "deckID" parameter is optional; "limit" 0 means the default limit.
	ListDue(ctx context.Context, userID int, deckID *int, limit int) ([]models.ReviewResponse, error)
	// Method CountDue count progress records due now.
	CountDue(ctx context.Context, userID int, deckID *int) (*models.DueCountResponse, error)
	// Method MasterySummary classify the user's cards into mastery levels.
	MasterySummary(ctx context.Context, userID int, deckID *int) (*models.MasteryLevelStatistics, error)
}

// ReviewHandler handles HTTP requests for card reviews and progress
type ReviewHandler struct {
	BaseHandler
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all review handler routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Route("/cards/{cardId}", func(r chi.Router) {
			r.Post("/review", h.Review)
			r.Get("/progress", h.GetProgress)
		})
		r.Route("/reviews/due", func(r chi.Router) {
			r.Get("/", h.ListDue)
			r.Get("/count", h.CountDue)
		})
		r.Get("/statistics/mastery", h.MasterySummary)
	})
}

// Review handles POST /api/v1/cards/{cardId}/review
// @Summary Grade a card
// @Description Submit a review grading for a card and get its rescheduled progress. Requires authentication.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cardId path int true "Card ID"
// @Param request body models.ReviewRequest true "Grade: AGAIN, HARD, GOOD or EASY"
// @Success 200 {object} models.ReviewResponse
// @Failure 400 {object} map[string]string "Bad request - invalid card ID, request body or grade"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Card not found or deleted"
// @Failure 409 {object} map[string]string "Card was graded concurrently, re-fetch and retry"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/cards/{cardId}/review [post]
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	cardID, err := strconv.Atoi(chi.URLParam(r, "cardId"))
	if err != nil || cardID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid card ID")
		return
	}

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.service.Review(r.Context(), userID, cardID, req.Grade, req.TimeTakenMs)
	if err != nil {
		h.Logger.Debug("review rejected", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		h.RespondServiceError(w, err, "failed to review card")
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// GetProgress handles GET /api/v1/cards/{cardId}/progress
// @Summary Get card progress
// @Description Get the spaced-repetition progress of a card. Requires authentication.
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param cardId path int true "Card ID"
// @Success 200 {object} models.ReviewResponse
// @Failure 400 {object} map[string]string "Invalid card ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Card was never graded, is deleted or belongs to another user"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/cards/{cardId}/progress [get]
func (h *ReviewHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	cardID, err := strconv.Atoi(chi.URLParam(r, "cardId"))
	if err != nil || cardID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid card ID")
		return
	}

	response, err := h.service.GetProgress(r.Context(), userID, cardID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get card progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// ListDue handles GET /api/v1/reviews/due
// @Summary List due cards
// @Description Get progress of cards due for review, earliest first. Requires authentication.
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param deckId query int false "Deck ID"
// @Param limit query int false "Maximum number of records, 1-500, default: 50"
// @Success 200 {array} models.ReviewResponse
// @Failure 400 {object} map[string]string "Invalid deck ID or limit"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reviews/due [get]
func (h *ReviewHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	deckID, err := parseOptionalInt(r, "deckId")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid deck ID")
		return
	}
	limitParam, err := parseOptionalInt(r, "limit")
	// an explicit zero is rejected, the service treats 0 as "use the default"
	if err != nil || (limitParam != nil && *limitParam == 0) {
		h.RespondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	limit := 0
	if limitParam != nil {
		limit = *limitParam
	}

	responses, err := h.service.ListDue(r.Context(), userID, deckID, limit)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get due cards")
		return
	}

	h.RespondJSON(w, http.StatusOK, responses)
}

// CountDue handles GET /api/v1/reviews/due/count
// @Summary Count due cards
// @Description Get the number of cards due for review. Requires authentication.
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param deckId query int false "Deck ID"
// @Success 200 {object} models.DueCountResponse
// @Failure 400 {object} map[string]string "Invalid deck ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reviews/due/count [get]
func (h *ReviewHandler) CountDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	deckID, err := parseOptionalInt(r, "deckId")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid deck ID")
		return
	}

	response, err := h.service.CountDue(r.Context(), userID, deckID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to count due cards")
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// MasterySummary handles GET /api/v1/statistics/mastery
// @Summary Get mastery statistics
// @Description Get the breakdown of the user's cards into new, still learning, almost done and mastered. Requires authentication.
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param deckId query int false "Deck ID"
// @Success 200 {object} models.MasteryLevelStatistics
// @Failure 400 {object} map[string]string "Invalid deck ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/statistics/mastery [get]
func (h *ReviewHandler) MasterySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	deckID, err := parseOptionalInt(r, "deckId")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid deck ID")
		return
	}

	stats, err := h.service.MasterySummary(r.Context(), userID, deckID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get mastery statistics")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// parseOptionalInt reads an integer query parameter, nil when absent
func parseOptionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
