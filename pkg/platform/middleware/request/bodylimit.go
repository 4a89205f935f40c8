package request

import (
	"net/http"
)

// BodyLimit caps the request body at maxBytes. Reads past the cap fail
// with http.MaxBytesError and the connection is closed. Must sit ahead of
// any JSON decoding in the chain.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
