package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flashcards/backend/internal/models"
	"github.com/flashcards/backend/internal/srs"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps methods for card_progress table data access
type ProgressRepository interface {
	// Method GetByUserAndCard retrieve the progress record of a (user, card) pair.
	//
	// If the user never graded the card, an error wrapping models.ErrNotFound is returned together with "nil" value.
	GetByUserAndCard(ctx context.Context, userID, cardID int) (*models.CardProgress, error)
	// Method Upsert store a progress record.
	//
	// Records with Version 0 are inserted, others are updated only if the stored version still matches.
	// A lost race is reported as an error wrapping models.ErrConflict.
	Upsert(ctx context.Context, progress models.CardProgress) (*models.CardProgress, error)
	// Method FindDue retrieve up to "limit" visible records of the user due at "asOf", earliest first.
	//
	// "deckID" parameter is optional and scopes the result to one deck.
	FindDue(ctx context.Context, userID int, asOf time.Time, deckID *int, limit int) ([]models.CardProgress, error)
	// Method CountDue count visible records of the user due at "asOf".
	//
	// Please reference FindDue method for more information about parameters.
	CountDue(ctx context.Context, userID int, asOf time.Time, deckID *int) (int, error)
	// Method GetMasteryCounts aggregate all visible cards of the user by learning state and interval.
	//
	// Cards without a record are reported as NEW.
	GetMasteryCounts(ctx context.Context, userID int, deckID *int) ([]models.StateIntervalCount, error)
	// Method IsCardVisible check that the card exists, is not deleted and belongs to a live deck of the user.
	IsCardVisible(ctx context.Context, userID, cardID int) (bool, error)
}

const (
	// DefaultDueLimit is used when a due list is requested without a limit
	DefaultDueLimit = 50
	// MaxDueLimit is the largest accepted due list limit
	MaxDueLimit = 500
)

type reviewService struct {
	repo      ProgressRepository
	scheduler *srs.Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(repo ProgressRepository, scheduler *srs.Scheduler, logger *zap.Logger) *reviewService {
	return &reviewService{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Review grades a card for a user and persists the rescheduled progress
//
// gradeParam must be one of "AGAIN", "HARD", "GOOD", "EASY".
// timeTakenMs is optional and only logged.
// If the card is not visible to the user, an error wrapping models.ErrNotFound is returned and no record is created.
// If another grading of the same card was stored in between, an error wrapping models.ErrConflict is returned.
func (s *reviewService) Review(ctx context.Context, userID, cardID int, gradeParam string, timeTakenMs *int) (*models.ReviewResponse, error) {
	grade, err := models.ParseGrade(gradeParam)
	if err != nil {
		return nil, models.NewProgressError("review", userID, cardID, err)
	}
	if timeTakenMs != nil && *timeTakenMs < 0 {
		return nil, models.NewProgressError("review", userID, cardID,
			fmt.Errorf("%w: timeTakenMs must not be negative", models.ErrInvalidInput))
	}

	visible, err := s.repo.IsCardVisible(ctx, userID, cardID)
	if err != nil {
		s.logger.Error("failed to check card visibility", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		return nil, models.NewProgressError("review", userID, cardID, err)
	}
	if !visible {
		return nil, models.NewProgressError("review", userID, cardID,
			fmt.Errorf("%w: card %d is not available", models.ErrNotFound, cardID))
	}

	current, err := s.repo.GetByUserAndCard(ctx, userID, cardID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		fresh := s.scheduler.NewProgress(userID, cardID)
		current = &fresh
	case err != nil:
		s.logger.Error("failed to get card progress", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		return nil, models.NewProgressError("review", userID, cardID, err)
	}

	// card_progress stores DATETIME(3); the response must match what a later read returns
	now := s.now().UTC().Truncate(time.Millisecond)
	next, err := s.scheduler.Schedule(*current, grade, now)
	if err != nil {
		s.logger.Error("failed to schedule card",
			zap.Int("user_id", userID),
			zap.Int("card_id", cardID),
			zap.String("state", current.LearningState.String()),
			zap.Error(err),
		)
		return nil, models.NewProgressError("review", userID, cardID, err)
	}

	stored, err := s.repo.Upsert(ctx, next)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Warn("concurrent grading rejected", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		} else {
			s.logger.Error("failed to store card progress", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		}
		return nil, models.NewProgressError("review", userID, cardID, err)
	}

	fields := []zap.Field{
		zap.Int("user_id", userID),
		zap.Int("card_id", cardID),
		zap.String("grade", grade.String()),
		zap.String("from_state", current.LearningState.String()),
		zap.String("to_state", stored.LearningState.String()),
		zap.Int("interval", stored.Interval),
	}
	if timeTakenMs != nil {
		fields = append(fields, zap.Int("time_taken_ms", *timeTakenMs))
	}
	s.logger.Info("Card reviewed", fields...)

	response := stored.ToReviewResponse()
	return &response, nil
}

// GetProgress retrieves the stored progress of a card for a user
//
// Nothing is created: a card never graded by the user yields an error wrapping models.ErrNotFound.
// A deleted or foreign card yields the same error even if progress is still stored for it.
func (s *reviewService) GetProgress(ctx context.Context, userID, cardID int) (*models.ReviewResponse, error) {
	visible, err := s.repo.IsCardVisible(ctx, userID, cardID)
	if err != nil {
		s.logger.Error("failed to check card visibility", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		return nil, models.NewProgressError("get progress", userID, cardID, err)
	}
	if !visible {
		return nil, models.NewProgressError("get progress", userID, cardID,
			fmt.Errorf("%w: card %d is not available", models.ErrNotFound, cardID))
	}

	progress, err := s.repo.GetByUserAndCard(ctx, userID, cardID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to get card progress", zap.Int("user_id", userID), zap.Int("card_id", cardID), zap.Error(err))
		}
		return nil, models.NewProgressError("get progress", userID, cardID, err)
	}

	response := progress.ToReviewResponse()
	return &response, nil
}

// ListDue retrieves progress records of the user that are due now, earliest first
//
// limit 0 means DefaultDueLimit; other values must be between 1 and MaxDueLimit.
func (s *reviewService) ListDue(ctx context.Context, userID int, deckID *int, limit int) ([]models.ReviewResponse, error) {
	if limit == 0 {
		limit = DefaultDueLimit
	}
	if limit < 1 || limit > MaxDueLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", models.ErrInvalidInput, MaxDueLimit)
	}
	if err := validateDeckID(deckID); err != nil {
		return nil, err
	}

	progresses, err := s.repo.FindDue(ctx, userID, s.now().UTC(), deckID, limit)
	if err != nil {
		s.logger.Error("failed to find due cards", zap.Int("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}

	responses := make([]models.ReviewResponse, 0, len(progresses))
	for _, progress := range progresses {
		responses = append(responses, progress.ToReviewResponse())
	}

	return responses, nil
}

// CountDue counts progress records of the user that are due now
func (s *reviewService) CountDue(ctx context.Context, userID int, deckID *int) (*models.DueCountResponse, error) {
	if err := validateDeckID(deckID); err != nil {
		return nil, err
	}

	count, err := s.repo.CountDue(ctx, userID, s.now().UTC(), deckID)
	if err != nil {
		s.logger.Error("failed to count due cards", zap.Int("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to count due cards: %w", err)
	}

	return &models.DueCountResponse{Count: count}, nil
}

// MasterySummary classifies all visible cards of the user into mastery levels
func (s *reviewService) MasterySummary(ctx context.Context, userID int, deckID *int) (*models.MasteryLevelStatistics, error) {
	if err := validateDeckID(deckID); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetMasteryCounts(ctx, userID, deckID)
	if err != nil {
		s.logger.Error("failed to get mastery counts", zap.Int("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get mastery statistics: %w", err)
	}

	stats := srs.Summarize(rows)
	return &stats, nil
}

func validateDeckID(deckID *int) error {
	if deckID != nil && *deckID <= 0 {
		return fmt.Errorf("%w: deckId must be a positive integer", models.ErrInvalidInput)
	}
	return nil
}
