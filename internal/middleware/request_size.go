package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize fits any review grading body with a wide margin
const DefaultMaxRequestSize = 64 * 1024

// RequestSizeLimitMiddleware caps request bodies at maxBytes
//
// A declared Content-Length over the cap is refused up front; chunked bodies are cut off by
// http.MaxBytesReader and fail to decode in the handler.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
