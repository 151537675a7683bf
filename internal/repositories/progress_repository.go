package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flashcards/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const (
	mysqlErrDuplicateEntry     = 1062
	mysqlErrNoReferencedRow    = 1452
	progressColumns            = `cp.id, cp.user_id, cp.card_id, cp.learning_state, cp.next_review, cp.interval_days, cp.ease_factor, cp.repetitions, cp.version, cp.created_at, cp.updated_at`
	visibleCardsJoin           = `JOIN cards c ON c.id = cp.card_id JOIN decks d ON d.id = c.deck_id`
	visibleCardsWhere          = `c.is_deleted = FALSE AND d.is_deleted = FALSE AND d.user_id = cp.user_id`
	defaultMasteryStateName    = "NEW"
	defaultMasteryIntervalDays = 0
)

// progressRepository implements ProgressRepository
type progressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressRepository creates a new card progress repository
func NewProgressRepository(db *sql.DB, logger *zap.Logger) *progressRepository {
	return &progressRepository{
		db:     db,
		logger: logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProgress reads one card_progress row selected with progressColumns
func scanProgress(row rowScanner) (*models.CardProgress, error) {
	var (
		progress   models.CardProgress
		stateName  string
		nextReview sql.NullTime
	)
	err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.CardID,
		&stateName,
		&nextReview,
		&progress.Interval,
		&progress.EaseFactor,
		&progress.Repetitions,
		&progress.Version,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	state, err := models.ParseLearningState(stateName)
	if err != nil {
		return nil, fmt.Errorf("corrupt card progress %d: %w", progress.ID, err)
	}
	progress.LearningState = state
	if nextReview.Valid {
		t := nextReview.Time
		progress.NextReview = &t
	}

	return &progress, nil
}

// GetByUserAndCard retrieves the progress record of a (user, card) pair
//
// If no record exists yet, an error wrapping models.ErrNotFound is returned together with "nil" value.
// Reads have no side effects.
func (r *progressRepository) GetByUserAndCard(ctx context.Context, userID, cardID int) (*models.CardProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM card_progress cp
		WHERE cp.user_id = ? AND cp.card_id = ?
	`

	progress, err := scanProgress(r.db.QueryRowContext(ctx, query, userID, cardID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no progress for user %d and card %d", models.ErrNotFound, userID, cardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card progress: %w", err)
	}

	return progress, nil
}

// Upsert stores a progress record using its version for optimistic concurrency
//
// A record with Version 0 is inserted; the (user_id, card_id) unique key turns a concurrent first
// grading into a conflict. A stored record is only overwritten if the row still has the version the
// record was read with. In both conflict cases an error wrapping models.ErrConflict is returned.
// A reference to a missing user or card is reported as models.ErrNotFound.
func (r *progressRepository) Upsert(ctx context.Context, progress models.CardProgress) (*models.CardProgress, error) {
	if progress.Version == 0 {
		return r.insert(ctx, progress)
	}
	return r.update(ctx, progress)
}

func (r *progressRepository) insert(ctx context.Context, progress models.CardProgress) (*models.CardProgress, error) {
	query := `
		INSERT INTO card_progress
		(user_id, card_id, learning_state, next_review, interval_days, ease_factor, repetitions, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		progress.UserID,
		progress.CardID,
		progress.LearningState.String(),
		nullTime(progress.NextReview),
		progress.Interval,
		progress.EaseFactor,
		progress.Repetitions,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			switch mysqlErr.Number {
			case mysqlErrDuplicateEntry:
				r.logger.Debug("Concurrent first grading detected",
					zap.Int("user_id", progress.UserID),
					zap.Int("card_id", progress.CardID),
				)
				return nil, fmt.Errorf("%w: progress for user %d and card %d was created concurrently", models.ErrConflict, progress.UserID, progress.CardID)
			case mysqlErrNoReferencedRow:
				return nil, fmt.Errorf("%w: user %d or card %d does not exist", models.ErrNotFound, progress.UserID, progress.CardID)
			}
		}
		return nil, fmt.Errorf("failed to insert card progress: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted card progress ID: %w", err)
	}

	progress.ID = int(id)
	progress.Version = 1
	return &progress, nil
}

func (r *progressRepository) update(ctx context.Context, progress models.CardProgress) (*models.CardProgress, error) {
	query := `
		UPDATE card_progress
		SET learning_state = ?, next_review = ?, interval_days = ?, ease_factor = ?, repetitions = ?,
		    version = version + 1, updated_at = ?
		WHERE user_id = ? AND card_id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		progress.LearningState.String(),
		nullTime(progress.NextReview),
		progress.Interval,
		progress.EaseFactor,
		progress.Repetitions,
		progress.UpdatedAt,
		progress.UserID,
		progress.CardID,
		progress.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update card progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		r.logger.Debug("Versioned card progress write lost",
			zap.Int("user_id", progress.UserID),
			zap.Int("card_id", progress.CardID),
			zap.Int("version", progress.Version),
		)
		return nil, fmt.Errorf("%w: progress for user %d and card %d is no longer at version %d", models.ErrConflict, progress.UserID, progress.CardID, progress.Version)
	}

	progress.Version++
	return &progress, nil
}

// FindDue retrieves the user's visible progress records with next_review <= asOf
//
// "deckID" parameter is optional and scopes the result to one deck.
// "limit" parameter is used to specify the maximum number of records to return.
// Records are ordered by next_review ascending, earliest due first.
func (r *progressRepository) FindDue(ctx context.Context, userID int, asOf time.Time, deckID *int, limit int) ([]models.CardProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM card_progress cp
		` + visibleCardsJoin + `
		WHERE cp.user_id = ? AND cp.next_review IS NOT NULL AND cp.next_review <= ? AND ` + visibleCardsWhere
	args := []any{userID, asOf}
	if deckID != nil {
		query += ` AND d.id = ?`
		args = append(args, *deckID)
	}
	query += `
		ORDER BY cp.next_review ASC, cp.card_id ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due card progress: %w", err)
	}
	defer rows.Close()

	progresses := []models.CardProgress{}
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card progress: %w", err)
		}
		progresses = append(progresses, *progress)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return progresses, nil
}

// CountDue counts the records FindDue would return without a limit
func (r *progressRepository) CountDue(ctx context.Context, userID int, asOf time.Time, deckID *int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM card_progress cp
		` + visibleCardsJoin + `
		WHERE cp.user_id = ? AND cp.next_review IS NOT NULL AND cp.next_review <= ? AND ` + visibleCardsWhere
	args := []any{userID, asOf}
	if deckID != nil {
		query += ` AND d.id = ?`
		args = append(args, *deckID)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count due card progress: %w", err)
	}

	return count, nil
}

// GetMasteryCounts aggregates all visible cards of the user by learning state and interval
//
// Cards the user has never graded have no progress row and are reported as NEW with interval 0.
// "deckID" parameter is optional and scopes the aggregation to one deck.
func (r *progressRepository) GetMasteryCounts(ctx context.Context, userID int, deckID *int) ([]models.StateIntervalCount, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(cp.learning_state, '%s') AS state_name,
		       COALESCE(cp.interval_days, %d) AS interval_value,
		       COUNT(*) AS card_count
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		LEFT JOIN card_progress cp ON cp.card_id = c.id AND cp.user_id = ?
		WHERE d.user_id = ? AND c.is_deleted = FALSE AND d.is_deleted = FALSE`, defaultMasteryStateName, defaultMasteryIntervalDays)
	args := []any{userID, userID}
	if deckID != nil {
		query += ` AND d.id = ?`
		args = append(args, *deckID)
	}
	query += `
		GROUP BY state_name, interval_value`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mastery counts: %w", err)
	}
	defer rows.Close()

	counts := []models.StateIntervalCount{}
	for rows.Next() {
		var (
			count     models.StateIntervalCount
			stateName string
		)
		if err := rows.Scan(&stateName, &count.Interval, &count.Count); err != nil {
			return nil, fmt.Errorf("failed to scan mastery count: %w", err)
		}
		state, err := models.ParseLearningState(stateName)
		if err != nil {
			return nil, fmt.Errorf("corrupt mastery row: %w", err)
		}
		count.LearningState = state
		counts = append(counts, count)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// IsCardVisible checks that the card exists, is not deleted and belongs to a non-deleted deck of the user
func (r *progressRepository) IsCardVisible(ctx context.Context, userID, cardID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM cards c
			JOIN decks d ON d.id = c.deck_id
			WHERE c.id = ? AND d.user_id = ? AND c.is_deleted = FALSE AND d.is_deleted = FALSE
		)
	`

	var visible bool
	if err := r.db.QueryRowContext(ctx, query, cardID, userID).Scan(&visible); err != nil {
		return false, fmt.Errorf("failed to check card visibility: %w", err)
	}

	return visible, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
