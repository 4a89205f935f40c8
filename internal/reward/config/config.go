// Package config holds the tunable policy parameters of the validation core
// and the single source of truth for calendar-day math.
package config

import "time"

// ReferenceLocation is the fixed timezone for all calendar-day boundaries.
// Cooldown "once per day" checks and daily-cap windows must agree on day
// boundaries or a reward could slip through at midnight; both call into
// DayBounds and SameCalendarDay below, which use this location.
var ReferenceLocation = time.UTC

// Config holds detector and window parameters. The defaults are starting
// points expected to be tuned against production data, not load-bearing
// constants.
type Config struct {
	// BurstThreshold is the number of successful events within BurstWindow
	// above which an attempt is flagged as rapid_fire_actions.
	BurstThreshold int

	// BurstWindow is the trailing window for burst detection.
	BurstWindow time.Duration

	// RegularitySampleSize is how many of the most recent events feed the
	// timing-regularity check. Needs at least 2 to produce a delta.
	RegularitySampleSize int

	// RegularityLookback bounds the candidate pool for the regularity
	// check. The per-call recent-events query spans HistoryLookback, which
	// covers this window and BurstWindow.
	RegularityLookback time.Duration

	// RegularityMaxVariance is the population variance threshold, in
	// milliseconds squared, below which consecutive deltas are considered
	// machine-regular. 10,000 ms2 means deltas cluster within roughly
	// +/-100ms of each other.
	RegularityMaxVariance float64
}

// HistoryLookback is how far back the per-call recent-events query must
// reach: the wider of the two detector windows, so a BurstWindow raised
// above RegularityLookback never undercounts bursts.
func (c *Config) HistoryLookback() time.Duration {
	if c.BurstWindow > c.RegularityLookback {
		return c.BurstWindow
	}
	return c.RegularityLookback
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() *Config {
	return &Config{
		BurstThreshold:        10,
		BurstWindow:           time.Minute,
		RegularitySampleSize:  5,
		RegularityLookback:    5 * time.Minute,
		RegularityMaxVariance: 10_000,
	}
}

// DayBounds returns the half-open calendar-day window [start, end) that
// contains t, in the reference timezone.
func DayBounds(t time.Time) (start, end time.Time) {
	local := t.In(ReferenceLocation)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ReferenceLocation)
	return start, start.AddDate(0, 0, 1)
}

// SameCalendarDay reports whether a and b fall on the same calendar date in
// the reference timezone. Absolute elapsed time is irrelevant: 23:59 and
// 00:01 the next day are different days even though 2 minutes apart.
func SameCalendarDay(a, b time.Time) bool {
	al, bl := a.In(ReferenceLocation), b.In(ReferenceLocation)
	ay, am, ad := al.Date()
	by, bm, bd := bl.Date()
	return ay == by && am == bm && ad == bd
}
