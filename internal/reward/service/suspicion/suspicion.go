// Package suspicion implements the pattern heuristics that catch automated
// reward farming: event bursts and machine-regular timing. Detection is pure
// computation over the user's recent events; persisting flags is the
// caller's concern.
package suspicion

import (
	"time"

	"github.com/google/uuid"

	"coinguard/internal/reward/config"
	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// Finding is the outcome of running the detectors against one attempt.
type Finding struct {
	Suspicious bool
	Flag       *models.SuspicionFlag
}

// Detector runs the configured heuristics.
type Detector struct {
	cfg *config.Config
}

// New creates a Detector with the given thresholds.
func New(cfg *config.Config) *Detector {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Detector{cfg: cfg}
}

// Detect evaluates the current attempt against the user's recent successful
// events for the same action, most recent first. The attempt itself counts
// as the newest data point in both heuristics. Burst detection runs first;
// when it fires, the regularity check is skipped so each attempt yields at
// most one flag.
func (d *Detector) Detect(userID id.UserID, action id.Action, recent []*models.ActionEvent, now time.Time) Finding {
	if flag := d.detectBurst(userID, action, recent, now); flag != nil {
		return Finding{Suspicious: true, Flag: flag}
	}
	if flag := d.detectRegularTiming(userID, action, recent, now); flag != nil {
		return Finding{Suspicious: true, Flag: flag}
	}
	return Finding{}
}

// detectBurst flags the attempt when the trailing window, current attempt
// included, holds more events than the threshold.
func (d *Detector) detectBurst(userID id.UserID, action id.Action, recent []*models.ActionEvent, now time.Time) *models.SuspicionFlag {
	cutoff := now.Add(-d.cfg.BurstWindow)
	count := 1
	for _, e := range recent {
		if !e.CreatedAt.Before(cutoff) {
			count++
		}
	}
	if count <= d.cfg.BurstThreshold {
		return nil
	}
	return &models.SuspicionFlag{
		ID:       uuid.New(),
		UserID:   userID,
		Action:   action,
		FlagType: models.FlagRapidFire,
		Evidence: map[string]any{
			"count":          count,
			"window_seconds": int(d.cfg.BurstWindow / time.Second),
		},
		CreatedAt: now,
	}
}

// detectRegularTiming flags the attempt when the gaps between the most
// recent timestamps are near-identical. Humans produce noisy intervals; a
// bot scripted with a fixed sleep produces deltas within tens of
// milliseconds of each other, which shows up as a tiny population variance.
func (d *Detector) detectRegularTiming(userID id.UserID, action id.Action, recent []*models.ActionEvent, now time.Time) *models.SuspicionFlag {
	sample := d.cfg.RegularitySampleSize
	if sample < 2 {
		return nil
	}

	// Newest first: the attempt's own timestamp, then stored events still
	// inside the lookback window. The pool may reach further back when
	// BurstWindow is wider; those older events are burst-only input.
	cutoff := now.Add(-d.cfg.RegularityLookback)
	timestamps := make([]time.Time, 0, sample)
	timestamps = append(timestamps, now)
	for _, e := range recent {
		if len(timestamps) == sample || e.CreatedAt.Before(cutoff) {
			break
		}
		timestamps = append(timestamps, e.CreatedAt)
	}
	if len(timestamps) < sample {
		return nil
	}

	deltas := make([]float64, 0, sample-1)
	for i := 0; i < len(timestamps)-1; i++ {
		gap := timestamps[i].Sub(timestamps[i+1])
		deltas = append(deltas, float64(gap.Milliseconds()))
	}

	mean, variance := meanAndVariance(deltas)
	if variance >= d.cfg.RegularityMaxVariance {
		return nil
	}
	return &models.SuspicionFlag{
		ID:       uuid.New(),
		UserID:   userID,
		Action:   action,
		FlagType: models.FlagRegularTiming,
		Evidence: map[string]any{
			"deltas_ms":    deltas,
			"avg_delta_ms": mean,
			"variance_ms2": variance,
		},
		CreatedAt: now,
	}
}

// meanAndVariance returns the mean and population variance of values.
func meanAndVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var acc float64
	for _, v := range values {
		diff := v - mean
		acc += diff * diff
	}
	return mean, acc / float64(len(values))
}
