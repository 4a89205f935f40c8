// Package validator implements the validation orchestrator: the single entry
// point deciding whether a reward-earning action is legitimate. It sequences
// rule lookup, cooldown, daily cap, and suspicion checks, short-circuits on
// the first failure, and on success delegates to the award primitive.
package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"coinguard/internal/reward/config"
	"coinguard/internal/reward/metrics"
	"coinguard/internal/reward/models"
	"coinguard/internal/reward/observability"
	"coinguard/internal/reward/service/cooldown"
	"coinguard/internal/reward/service/dailycap"
	"coinguard/internal/reward/service/suspicion"
	"coinguard/internal/reward/tracer"
	id "coinguard/pkg/domain"
	dErrors "coinguard/pkg/domain-errors"
	"coinguard/pkg/platform/audit"
	"coinguard/pkg/platform/sentinel"
	psync "coinguard/pkg/platform/sync"
	"coinguard/pkg/requestcontext"
)

type Service struct {
	rules          RuleStore
	events         EventStore
	flags          FlagStore
	awarder        Awarder
	auditPublisher AuditPublisher
	detector       *suspicion.Detector
	cfg            *config.Config
	locks          *psync.ShardedMutex
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.cfg = cfg
		s.detector = suspicion.New(cfg)
	}
}

func New(
	rules RuleStore,
	events EventStore,
	flags FlagStore,
	awarder Awarder,
	opts ...Option,
) (*Service, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule store is required")
	}
	if events == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if flags == nil {
		return nil, fmt.Errorf("flag store is required")
	}
	if awarder == nil {
		return nil, fmt.Errorf("awarder is required")
	}

	svc := &Service{
		rules:   rules,
		events:  events,
		flags:   flags,
		awarder: awarder,
		cfg:     config.DefaultConfig(),
		locks:   psync.NewShardedMutex(),
		tracer:  tracer.NewNoop(),
	}
	svc.detector = suspicion.New(svc.cfg)

	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Validate decides whether one reward-earning attempt is legitimate and, if
// so, awards it. Every call writes exactly one security log entry, whatever
// branch it takes; log sink failure never fails the call.
func (s *Service) Validate(ctx context.Context, userID id.UserID, action id.Action, meta models.ClientMetadata) (*models.ValidationResult, error) {
	started := time.Now()
	now := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, tracer.SpanValidate,
		tracer.String(tracer.AttrAction, action.String()),
	)

	result, err := s.validate(ctx, span, userID, action, meta, now)

	s.recordOutcome(ctx, span, userID, action, meta, now, result, err)
	s.observeDuration(time.Since(started))
	span.End(err)
	return result, err
}

func (s *Service) validate(ctx context.Context, span tracer.Span, userID id.UserID, action id.Action, meta models.ClientMetadata, now time.Time) (*models.ValidationResult, error) {
	rule, err := s.rules.Get(ctx, action)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.RejectedResult(models.Reject(models.ReasonNotAuthorized)), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load action rule")
	}
	if !rule.IsActive {
		return models.RejectedResult(models.Reject(models.ReasonNotAuthorized)), nil
	}

	// The read-check-award sequence for one (user, action) pair runs under
	// a per-pair lock so two in-flight calls cannot both observe a stale
	// history. The postgres awarder re-checks under an advisory lock for
	// multi-instance deployments.
	var result *models.ValidationResult
	lockKey := userID.String() + ":" + action.String()
	lockErr := s.locks.WithLock(lockKey, func() error {
		var innerErr error
		result, innerErr = s.checkAndAward(ctx, span, rule, userID, action, meta, now)
		return innerErr
	})
	if lockErr != nil {
		return nil, lockErr
	}
	return result, nil
}

func (s *Service) checkAndAward(ctx context.Context, span tracer.Span, rule *models.ActionRule, userID id.UserID, action id.Action, meta models.ClientMetadata, now time.Time) (*models.ValidationResult, error) {
	last, err := s.events.MostRecent(ctx, userID, action)
	if errors.Is(err, sentinel.ErrNotFound) {
		last = nil
	} else if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read last event")
	}

	if d := cooldown.Check(rule, last, now); !d.Allowed {
		return models.RejectedResult(d), nil
	}

	capDecision, err := dailycap.Check(ctx, s.events, rule, userID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check daily cap")
	}
	if !capDecision.Allowed {
		return models.RejectedResult(capDecision), nil
	}

	recent, err := s.events.ListSince(ctx, userID, action, now.Add(-s.cfg.HistoryLookback()))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent events")
	}
	if finding := s.detector.Detect(userID, action, recent, now); finding.Suspicious {
		s.persistFlag(ctx, span, finding.Flag)
		return models.RejectedResult(models.Reject(models.ReasonSuspiciousActivity)), nil
	}

	// WithoutCancel: once all checks pass, an abandoned request must not
	// leave a half-applied award behind.
	event, err := s.awarder.Award(context.WithoutCancel(ctx), userID, rule, meta, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			span.AddEvent(tracer.EventRaceLost)
			if s.metrics != nil {
				s.metrics.IncrementRaceLosses()
			}
			return s.raceLossRejection(ctx, rule, userID, action, now), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to award reward")
	}

	if s.metrics != nil {
		s.metrics.AddAwardedCoins(event.Amount)
	}
	return models.AcceptedResult(event), nil
}

// raceLossRejection maps a conflict from the awarder to the same rejection
// the loser would have seen had it read the winner's event: a cooldown
// rejection with a freshly computed retry hint.
func (s *Service) raceLossRejection(ctx context.Context, rule *models.ActionRule, userID id.UserID, action id.Action, now time.Time) *models.ValidationResult {
	last, err := s.events.MostRecent(ctx, userID, action)
	if err == nil {
		if d := cooldown.Check(rule, last, now); !d.Allowed {
			return models.RejectedResult(d)
		}
	}
	return models.RejectedResult(models.Reject(models.ReasonCooldownActive))
}

// persistFlag writes the suspicion flag. Failure is logged and counted but
// the attempt is still rejected; losing evidence must not unblock an abuser.
func (s *Service) persistFlag(ctx context.Context, span tracer.Span, flag *models.SuspicionFlag) {
	span.AddEvent(tracer.EventFlagRaised, tracer.String("flag_type", string(flag.FlagType)))
	if s.metrics != nil {
		s.metrics.IncrementSuspicionFlags(string(flag.FlagType))
	}
	if err := s.flags.Append(ctx, flag); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementFlagWriteFailures()
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to persist suspicion flag",
				"error", err,
				"user_id", flag.UserID,
				"action", flag.Action,
				"flag_type", flag.FlagType,
			)
		}
	}
}

// recordOutcome writes the one security log entry for this call and bumps
// the outcome metrics.
func (s *Service) recordOutcome(ctx context.Context, span tracer.Span, userID id.UserID, action id.Action, meta models.ClientMetadata, now time.Time, result *models.ValidationResult, err error) {
	entry := audit.Entry{
		UserID:    userID,
		Action:    action,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Timestamp: now,
	}
	// The caller's free-form metadata rides along on every outcome; on a
	// rejection this map is the only place it survives, since no event is
	// written.
	if len(meta.Extra) > 0 {
		entry.Metadata = maps.Clone(meta.Extra)
	}
	audit.ParseUserAgent(meta.UserAgent).Annotate(&entry)

	switch {
	case err != nil:
		entry.Outcome = audit.OutcomeError
		entry.Reason = "internal_error"
	case result.Accepted:
		entry.Outcome = audit.OutcomeAccepted
	default:
		entry.Outcome = audit.OutcomeRejected
		entry.Reason = string(result.Reason)
		entry.Suspicious = result.Suspicious
	}

	span.SetAttributes(
		tracer.String(tracer.AttrOutcome, string(entry.Outcome)),
		tracer.Bool(tracer.AttrSuspicious, entry.Suspicious),
	)
	if entry.Reason != "" {
		span.SetAttributes(tracer.String(tracer.AttrReason, entry.Reason))
	}

	if s.metrics != nil {
		s.metrics.IncrementValidations(string(entry.Outcome))
		if entry.Outcome == audit.OutcomeRejected {
			s.metrics.IncrementRejections(entry.Reason)
		}
	}

	if emitErr := observability.LogAudit(ctx, s.logger, s.auditPublisher, entry); emitErr != nil {
		if s.metrics != nil {
			s.metrics.IncrementAuditEmitFailures()
		}
	} else {
		span.AddEvent(tracer.EventAuditEmitted)
	}
}

func (s *Service) observeDuration(elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveValidationDuration(elapsed.Seconds())
	}
}
