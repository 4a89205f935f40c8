// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request observe the same "now",
// so the cooldown math, the suspicion heuristics, and the security log
// agree on when the request happened.
package requesttime

import (
	"net/http"
	"time"

	"coinguard/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context. Handlers and services read it back through
// requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
