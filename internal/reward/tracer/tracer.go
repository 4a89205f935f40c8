// Package tracer provides a lightweight tracing abstraction for the reward
// module. The validator emits spans through this interface so the policy
// code stays decoupled from OpenTelemetry APIs.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the reward module.
const (
	SpanValidate = "reward.validate"
	SpanAward    = "reward.award"
)

// Attribute keys used by the reward module.
const (
	AttrAction     = "reward.action"
	AttrOutcome    = "reward.outcome"
	AttrReason     = "reward.reason"
	AttrSuspicious = "reward.suspicious"
	AttrAmount     = "reward.amount"
)

// Event names used by the reward module.
const (
	EventFlagRaised   = "suspicion.flag_raised"
	EventRaceLost     = "award.race_lost"
	EventAuditEmitted = "audit.emitted"
)
