package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// corsAllowedMethods lists every method the review API serves
const corsAllowedMethods = "GET, POST, OPTIONS"

// CORSMiddleware creates a CORS middleware for the given origins
//
// "*" allows any origin without credentials. Listed origins are echoed back and may send the
// access_token cookie.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowedOrigins, "*")
	allowHeaders := strings.Join([]string{"Content-Type", "Authorization", RequestIDHeader}, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			header := w.Header()
			header.Add("Vary", "Origin")

			switch {
			case origin == "":
			case wildcard:
				header.Set("Access-Control-Allow-Origin", "*")
			case originListed(origin, allowedOrigins):
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
			}
			header.Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method == http.MethodOptions {
				header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				header.Set("Access-Control-Allow-Headers", allowHeaders)
				header.Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originListed(origin string, allowedOrigins []string) bool {
	return slices.ContainsFunc(allowedOrigins, func(allowed string) bool {
		return strings.EqualFold(origin, allowed)
	})
}
