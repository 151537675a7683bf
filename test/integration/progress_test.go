//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/flashcards/backend/internal/auth"
	"github.com/flashcards/backend/internal/config"
	"github.com/flashcards/backend/internal/handlers"
	"github.com/flashcards/backend/internal/models"
	"github.com/flashcards/backend/internal/repositories"
	"github.com/flashcards/backend/internal/services"
	"github.com/flashcards/backend/internal/srs"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fallbackDSN = "root:password@tcp(localhost:3306)/flashcards_test?parseTime=true&loc=UTC&charset=utf8mb4&multiStatements=true"

var (
	testDB        *sql.DB
	testRouter    chi.Router
	testLogger    *zap.Logger
	testValidator *auth.TokenValidator
	testScheduler *srs.Scheduler
)

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := fallbackDSN
	if cfg.Database.Host != "" {
		dsn = cfg.DSN()
	}

	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	if err := migrateTestSchema(testDB); err != nil {
		panic(fmt.Sprintf("Failed to migrate test database: %v", err))
	}

	testScheduler, err = srs.NewScheduler(cfg.SRS)
	if err != nil {
		panic(fmt.Sprintf("Failed to create scheduler: %v", err))
	}
	testValidator = auth.NewTokenValidator(cfg.JWT.Secret)
	testRouter = setupTestRouter(testDB, testLogger)

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

// migrateTestSchema applies the service migrations
func migrateTestSchema(db *sql.DB) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{
		MigrationsTable: "srs_schema_migrations",
	})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// setupTestRouter creates a test router with all handlers
func setupTestRouter(db *sql.DB, logger *zap.Logger) chi.Router {
	repo := repositories.NewProgressRepository(db, logger)
	svc := services.NewReviewService(repo, testScheduler, logger)
	reviewHandler := handlers.NewReviewHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		reviewHandler.RegisterRoutes(r, auth.AuthMiddleware(testValidator))
	})
	return r
}

type fixture struct {
	userID      int
	otherUserID int
	deckID      int
	otherDeckID int
	cardIDs     []int
	deletedCard int
	foreignCard int
}

// seedTestData inserts two users, their decks and cards
func seedTestData(t *testing.T, db *sql.DB) fixture {
	t.Helper()
	cleanupTestData(t, db)

	var f fixture
	f.userID = insertRow(t, db, "INSERT INTO users (email) VALUES (?)", "learner@example.com")
	f.otherUserID = insertRow(t, db, "INSERT INTO users (email) VALUES (?)", "other@example.com")
	f.deckID = insertRow(t, db, "INSERT INTO decks (user_id, title) VALUES (?, ?)", f.userID, "Spanish verbs")
	f.otherDeckID = insertRow(t, db, "INSERT INTO decks (user_id, title) VALUES (?, ?)", f.otherUserID, "Chemistry")

	for _, term := range []string{"hablar", "comer", "vivir"} {
		f.cardIDs = append(f.cardIDs, insertRow(t, db, "INSERT INTO cards (deck_id, term, definition) VALUES (?, ?, ?)", f.deckID, term, "to "+term))
	}
	f.deletedCard = insertRow(t, db, "INSERT INTO cards (deck_id, term, definition, is_deleted) VALUES (?, ?, ?, TRUE)", f.deckID, "ser", "to be")
	f.foreignCard = insertRow(t, db, "INSERT INTO cards (deck_id, term, definition) VALUES (?, ?, ?)", f.otherDeckID, "H2O", "water")

	return f
}

func insertRow(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	result, err := db.Exec(query, args...)
	require.NoError(t, err, "Failed to seed test data")
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

// cleanupTestData removes all test data
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"card_progress", "cards", "decks", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to cleanup test data")
	}
}

func doRequest(t *testing.T, userID int, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	token, err := testValidator.GenerateAccessToken(userID, 1, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func review(t *testing.T, userID, cardID int, grade string) (*httptest.ResponseRecorder, models.ReviewResponse) {
	t.Helper()
	w := doRequest(t, userID, http.MethodPost, fmt.Sprintf("/api/v1/cards/%d/review", cardID), models.ReviewRequest{Grade: grade})
	var resp models.ReviewResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestIntegration_FreshCardGradedGoodGraduates(t *testing.T) {
	f := seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)
	cardID := f.cardIDs[0]

	w := doRequest(t, f.userID, http.MethodGet, fmt.Sprintf("/api/v1/cards/%d/progress", cardID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	expectedStates := []string{"LEARNING_MCQ", "LEARNING_TYPING", "REVIEWING"}
	var last models.ReviewResponse
	for i, expected := range expectedStates {
		w, resp := review(t, f.userID, cardID, "GOOD")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, expected, resp.LearningState, "grading %d", i+1)
		last = resp
	}

	assert.Equal(t, 1, last.Interval)
	assert.Equal(t, 1, last.Repetitions)
	assert.Equal(t, 2.5, last.EaseFactor)
	require.NotNil(t, last.NextReview)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 1), *last.NextReview, time.Minute)

	w = doRequest(t, f.userID, http.MethodGet, fmt.Sprintf("/api/v1/cards/%d/progress", cardID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.ReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, last.ID, stored.ID)
	assert.Equal(t, "REVIEWING", stored.LearningState)
	require.NotNil(t, stored.NextReview)
	assert.True(t, last.NextReview.Equal(*stored.NextReview), "review %s, stored %s", last.NextReview, stored.NextReview)
	require.NotNil(t, last.LastReview)
	require.NotNil(t, stored.LastReview)
	assert.True(t, last.LastReview.Equal(*stored.LastReview), "review %s, stored %s", last.LastReview, stored.LastReview)

	var version int
	require.NoError(t, testDB.QueryRow("SELECT version FROM card_progress WHERE id = ?", last.ID).Scan(&version))
	assert.Equal(t, 3, version)
}

func TestIntegration_InvisibleCardsAreNotGraded(t *testing.T) {
	f := seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	tests := []struct {
		name   string
		cardID int
	}{
		{"soft deleted card", f.deletedCard},
		{"card of another user", f.foreignCard},
		{"missing card", f.foreignCard + 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := review(t, f.userID, tt.cardID, "GOOD")

			assert.Equal(t, http.StatusNotFound, w.Code)
			var count int
			require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM card_progress WHERE card_id = ?", tt.cardID).Scan(&count))
			assert.Equal(t, 0, count)
		})
	}
}

func TestIntegration_ProgressOfDeletedCardsIsHidden(t *testing.T) {
	tests := []struct {
		name   string
		delete func(f fixture) (string, int)
	}{
		{"soft deleted card", func(f fixture) (string, int) {
			return "UPDATE cards SET is_deleted = TRUE WHERE id = ?", f.cardIDs[0]
		}},
		{"soft deleted deck", func(f fixture) (string, int) {
			return "UPDATE decks SET is_deleted = TRUE WHERE id = ?", f.deckID
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := seedTestData(t, testDB)
			defer cleanupTestData(t, testDB)
			target := fmt.Sprintf("/api/v1/cards/%d/progress", f.cardIDs[0])

			w, _ := review(t, f.userID, f.cardIDs[0], "GOOD")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			w = doRequest(t, f.userID, http.MethodGet, target, nil)
			require.Equal(t, http.StatusOK, w.Code)

			query, id := tt.delete(f)
			_, err := testDB.Exec(query, id)
			require.NoError(t, err)

			w = doRequest(t, f.userID, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)

			var count int
			require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM card_progress WHERE card_id = ?", f.cardIDs[0]).Scan(&count))
			assert.Equal(t, 1, count)
		})
	}
}

func TestIntegration_InvalidGrade(t *testing.T) {
	f := seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	w, _ := review(t, f.userID, f.cardIDs[0], "PERFECT")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegration_DueCardsAndMastery(t *testing.T) {
	f := seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	// card 0 and 1 start learning, card 2 stays untouched
	for _, cardID := range f.cardIDs[:2] {
		w, _ := review(t, f.userID, cardID, "GOOD")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(t, f.userID, http.MethodGet, "/api/v1/reviews/due/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())

	now := time.Now().UTC()
	_, err := testDB.Exec("UPDATE card_progress SET next_review = ? WHERE card_id = ?", now.Add(-time.Hour), f.cardIDs[1])
	require.NoError(t, err)
	_, err = testDB.Exec("UPDATE card_progress SET next_review = ? WHERE card_id = ?", now.Add(-2*time.Hour), f.cardIDs[0])
	require.NoError(t, err)

	w = doRequest(t, f.userID, http.MethodGet, fmt.Sprintf("/api/v1/reviews/due?deckId=%d", f.deckID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var due []models.ReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &due))
	require.Len(t, due, 2)
	assert.Equal(t, f.cardIDs[0], due[0].CardID)
	assert.Equal(t, f.cardIDs[1], due[1].CardID)

	w = doRequest(t, f.userID, http.MethodGet, "/api/v1/reviews/due?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &due))
	assert.Len(t, due, 1)

	// deleting the card hides its progress from due queries
	_, err = testDB.Exec("UPDATE cards SET is_deleted = TRUE WHERE id = ?", f.cardIDs[1])
	require.NoError(t, err)
	w = doRequest(t, f.userID, http.MethodGet, "/api/v1/reviews/due/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = doRequest(t, f.userID, http.MethodGet, "/api/v1/statistics/mastery", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.MasteryLevelStatistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.NewCards)
	assert.Equal(t, 1, stats.StillLearning)
	assert.Equal(t, 50.0, stats.NewCardsPercentage)

	w = doRequest(t, f.otherUserID, http.MethodGet, "/api/v1/reviews/due/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestIntegration_ConcurrentWritesConflict(t *testing.T) {
	f := seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)
	ctx := context.Background()
	repo := repositories.NewProgressRepository(testDB, testLogger)
	now := time.Now().UTC()

	first, err := testScheduler.Schedule(testScheduler.NewProgress(f.userID, f.cardIDs[0]), models.GradeGood, now)
	require.NoError(t, err)

	stored, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)

	// a second first grading of the same pair loses on the unique key
	_, err = repo.Upsert(ctx, first)
	assert.ErrorIs(t, err, models.ErrConflict)

	// two writers read the same version, only one of them wins
	read, err := repo.GetByUserAndCard(ctx, f.userID, f.cardIDs[0])
	require.NoError(t, err)
	a, err := testScheduler.Schedule(*read, models.GradeGood, now)
	require.NoError(t, err)
	b, err := testScheduler.Schedule(*read, models.GradeAgain, now)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, b)
	assert.ErrorIs(t, err, models.ErrConflict)

	final, err := repo.GetByUserAndCard(ctx, f.userID, f.cardIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.LearningStateLearningTyping, final.LearningState)
	assert.Equal(t, 2, final.Version)
}
