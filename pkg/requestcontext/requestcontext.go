// Package requestcontext carries request-scoped values (request ID, client
// metadata, authenticated user, request time) through context without the
// rest of the codebase knowing about context keys.
package requestcontext

import (
	"context"
	"time"

	id "coinguard/pkg/domain"
)

type (
	requestIDKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	userIDKey      struct{}
	requestTimeKey struct{}
)

// WithRequestID stores the correlation ID for this request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID retrieves the correlation ID, or "" when unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata stores the client IP and User-Agent captured at the edge.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP retrieves the client IP, or "" when unset.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the client User-Agent, or "" when unset.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUserID stores the authenticated user for this request.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID retrieves the authenticated user, or the zero UserID when unset.
func UserID(ctx context.Context) id.UserID {
	if v, ok := ctx.Value(userIDKey{}).(id.UserID); ok {
		return v
	}
	return id.UserID{}
}

// WithTime injects the request-scoped time. All policy checks within a
// single validation call must observe the same server-derived "now"; client
// supplied timestamps are never stored here.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now retrieves the request-scoped time.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
