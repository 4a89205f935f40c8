package admin

import (
	"context"
	"log/slog"
	"net/http"

	"coinguard/pkg/requestcontext"
	"coinguard/pkg/secrets"
)

// Context key for storing admin actor identifier.
type contextKeyAdminActorID struct{}

// ContextKeyAdminActorID is exported for use in handlers and tests.
var ContextKeyAdminActorID = contextKeyAdminActorID{}

// GetAdminActorID retrieves the admin actor identifier from the context.
// Returns empty string if not set or if this is not an admin request.
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(ContextKeyAdminActorID).(string); ok {
		return actorID
	}
	return ""
}

// RequireAdminKey returns middleware that guards internal endpoints with an
// API key. Only the bcrypt hash of the key is held in memory, so a leaked
// config dump does not reveal the key itself.
func RequireAdminKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Admin-Key")
			if key == "" || secrets.Verify(key, keyHash) != nil {
				ctx := r.Context()
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "admin key mismatch",
					"request_id", requestID,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin key required"}`))
				return
			}

			ctx := r.Context()
			// Capture admin actor identifier for audit attribution.
			// This header identifies which admin performed the action.
			if actorID := r.Header.Get("X-Admin-Actor-ID"); actorID != "" {
				ctx = context.WithValue(ctx, ContextKeyAdminActorID, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
