package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps valid client id", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, id, seen)
	})

	t.Run("normalises client id", func(t *testing.T) {
		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.ToUpper(id.String()))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, id.String(), seen)
		assert.Equal(t, id.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces malformed client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/cards/1/review", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRecoveryMiddleware_ReraisesAbortHandler(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, 0, logs.Len())
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name                string
		allowed             []string
		origin              string
		method              string
		expectedOrigin      string
		expectedCredentials string
		expectedStatus      int
	}{
		{"wildcard", []string{"*"}, "https://app.example.com", http.MethodGet, "*", "", http.StatusOK},
		{"listed origin", []string{"https://app.example.com"}, "https://APP.example.com", http.MethodGet, "https://APP.example.com", "true", http.StatusOK},
		{"unlisted origin", []string{"https://app.example.com"}, "https://evil.example.com", http.MethodGet, "", "", http.StatusOK},
		{"no origin", []string{"*"}, "", http.MethodGet, "", "", http.StatusOK},
		{"preflight", []string{"*"}, "https://app.example.com", http.MethodOptions, "*", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/reviews/due", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
			assert.Contains(t, w.Header().Values("Vary"), "Origin")
		})
	}

	t.Run("preflight lists served methods only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/cards/1/review", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		CORSMiddleware([]string{"*"})(next).ServeHTTP(w, req)

		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
	})
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("small body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"grade":"GOOD"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 17))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"request body too large"}`, w.Body.String())
	})

	t.Run("chunked body is cut off", func(t *testing.T) {
		var readErr error
		handler := RequestSizeLimitMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32)))
		req.ContentLength = -1

		handler.ServeHTTP(httptest.NewRecorder(), req)

		var maxBytesErr *http.MaxBytesError
		assert.ErrorAs(t, readErr, &maxBytesErr)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(zap.New(core)))
	r.Get("/api/v1/cards/{cardId}/progress", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cards/42/progress", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "HTTP request", logs.All()[0].Message)
	assert.Equal(t, "/api/v1/cards/42/progress", fields["path"])
	assert.Equal(t, "/api/v1/cards/{cardId}/progress", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, int64(len(`{"error":"not found"}`)), fields["bytes"])
	assert.NotEmpty(t, fields["request_id"])
}
