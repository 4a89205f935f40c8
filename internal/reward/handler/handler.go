// Package handler exposes the reward validation service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"coinguard/internal/reward/models"
	"coinguard/internal/reward/store/flags"
	"coinguard/internal/reward/store/rules"
	id "coinguard/pkg/domain"
	dErrors "coinguard/pkg/domain-errors"
	"coinguard/pkg/platform/httputil"
	"coinguard/pkg/platform/validation"
	"coinguard/pkg/requestcontext"
)

// Validator is the orchestrator contract the handler depends on.
type Validator interface {
	Validate(ctx context.Context, userID id.UserID, action id.Action, meta models.ClientMetadata) (*models.ValidationResult, error)
}

type Handler struct {
	validator Validator
	rules     rules.Store
	flags     flags.Store
	logger    *slog.Logger
}

func New(validator Validator, ruleStore rules.Store, flagStore flags.Store, logger *slog.Logger) *Handler {
	return &Handler{
		validator: validator,
		rules:     ruleStore,
		flags:     flagStore,
		logger:    logger,
	}
}

// Register mounts the public validation endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/rewards/validate", h.HandleValidate)
}

// RegisterInternal mounts the read-only admin views.
func (h *Handler) RegisterInternal(r chi.Router) {
	r.Get("/internal/v1/rules", h.HandleListRules)
	r.Get("/internal/v1/flags/{user_id}", h.HandleListFlags)
}

// validateRequest is the body of POST /api/v1/rewards/validate.
type validateRequest struct {
	Action   string            `json:"action"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (req *validateRequest) Normalize() {
	req.Action = strings.TrimSpace(req.Action)
}

func (req *validateRequest) Validate() error {
	if req.Action == "" {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	if err := validation.CheckStringLength("action", req.Action, validation.MaxActionLength); err != nil {
		return err
	}
	if err := validation.CheckMapCount("metadata entries", len(req.Metadata), validation.MaxMetadataKeys); err != nil {
		return err
	}
	for k, v := range req.Metadata {
		if err := validation.CheckStringLength("metadata key", k, validation.MaxMetadataKeyLength); err != nil {
			return err
		}
		if err := validation.CheckStringLength("metadata value", v, validation.MaxMetadataValueLength); err != nil {
			return err
		}
	}
	return nil
}

// validateResponse mirrors ValidationResult with a user-facing message.
type validateResponse struct {
	Accepted          bool   `json:"accepted"`
	Reason            string `json:"reason,omitempty"`
	Message           string `json:"message,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
	AmountCredited    int    `json:"amount_credited,omitempty"`
	EventID           string `json:"event_id,omitempty"`
}

// HandleValidate implements POST /api/v1/rewards/validate.
//
// Input: { "action": "daily_login", "metadata": { ... } }
// Output: 200 with the result on accept, 403/429 with reason on policy
// rejection, 503 when the decision could not be made.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Limit request body size to prevent DoS via large payloads
	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxBodySize)

	req, ok := httputil.DecodeAndPrepare[validateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	action, err := id.ParseAction(req.Action)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid action name"))
		return
	}

	meta := models.ClientMetadata{
		IPAddress: requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Extra:     req.Metadata,
	}

	result, err := h.validator.Validate(ctx, userID, action, meta)
	if err != nil {
		h.logger.ErrorContext(ctx, "validation failed",
			"error", err,
			"action", action,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "validation temporarily unavailable"))
		return
	}

	writeResult(w, result)
}

// writeResult maps a validation result to the HTTP surface. Retryable
// rejections (cooldown, daily cap) get 429 with a Retry-After header;
// authorization and suspicion rejections get 403.
func writeResult(w http.ResponseWriter, result *models.ValidationResult) {
	if result.Accepted {
		httputil.WriteJSON(w, http.StatusOK, &validateResponse{
			Accepted:       true,
			AmountCredited: result.AmountCredited,
			EventID:        result.EventID.String(),
		})
		return
	}

	resp := &validateResponse{
		Reason:            string(result.Reason),
		Message:           result.Reason.Message(),
		RetryAfterSeconds: result.RetryAfterSeconds,
	}

	switch result.Reason {
	case models.ReasonCooldownActive, models.ReasonDailyLimitReached:
		if result.RetryAfterSeconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		}
		httputil.WriteJSON(w, http.StatusTooManyRequests, resp)
	default:
		httputil.WriteJSON(w, http.StatusForbidden, resp)
	}
}

// HandleListRules implements GET /internal/v1/rules.
func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ruleList, err := h.rules.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list rules",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rules"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rules": ruleList})
}

// HandleListFlags implements GET /internal/v1/flags/{user_id}.
func (h *Handler) HandleListFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "user_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid user id"))
		return
	}

	flagList, err := h.flags.ListByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list flags",
			"error", err,
			"user_id", userID,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list flags"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"flags": flagList})
}
