// Package observability provides security log helpers for the reward module.
package observability

import (
	"context"
	"log/slog"

	"coinguard/pkg/platform/audit"
	"coinguard/pkg/requestcontext"
)

// AuditPublisher emits security log entries for validation attempts.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// LogAudit records one validation attempt on both the structured logger and
// the security log publisher. The request ID from context is folded into
// the entry when the caller left it empty. The returned error is the
// publisher's; callers decide whether it is fatal (it never should be).
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, entry audit.Entry) error {
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}

	if logger != nil {
		logger.InfoContext(ctx, "validation attempt",
			"log_type", "audit",
			"user_id", entry.UserID,
			"action", entry.Action,
			"outcome", entry.Outcome,
			"reason", entry.Reason,
			"suspicious", entry.Suspicious,
			"request_id", entry.RequestID,
		)
	}

	if publisher == nil {
		return nil
	}
	if err := publisher.Emit(ctx, entry); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to emit security log entry",
				"error", err,
				"user_id", entry.UserID,
				"action", entry.Action,
			)
		}
		return err
	}
	return nil
}
