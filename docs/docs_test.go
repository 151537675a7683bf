package docs

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/flashcards/backend/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestSwaggerInfo_MatchesRegisteredRoutes fails when a route is added, moved or removed without regenerating the docs
func TestSwaggerInfo_MatchesRegisteredRoutes(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	documented := make(map[string]bool)
	for path, operations := range doc.Paths {
		for method := range operations {
			documented[strings.ToUpper(method)+" "+path] = true
		}
	}

	reviewHandler := handlers.NewReviewHandler(nil, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		reviewHandler.RegisterRoutes(r, func(next http.Handler) http.Handler { return next })
	})

	registered := make(map[string]bool)
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+strings.TrimSuffix(route, "/")] = true
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, registered, documented)
}

func TestSwaggerInfo_DeclaresBearerAuth(t *testing.T) {
	var doc struct {
		SecurityDefinitions map[string]struct {
			Type string `json:"type"`
			Name string `json:"name"`
			In   string `json:"in"`
		} `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	bearer, ok := doc.SecurityDefinitions["BearerAuth"]
	require.True(t, ok)
	assert.Equal(t, "apiKey", bearer.Type)
	assert.Equal(t, "Authorization", bearer.Name)
	assert.Equal(t, "header", bearer.In)
}
