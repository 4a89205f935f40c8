package suspicion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinguard/internal/reward/config"
	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// eventsAt builds a most-recent-first event list from offsets before now.
func eventsAt(userID id.UserID, now time.Time, offsets ...time.Duration) []*models.ActionEvent {
	out := make([]*models.ActionEvent, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, &models.ActionEvent{
			ID:        uuid.New(),
			UserID:    userID,
			Action:    "scroll_page",
			CreatedAt: now.Add(-off),
		})
	}
	return out
}

func TestDetect_NoEvents(t *testing.T) {
	d := New(nil)
	finding := d.Detect(id.NewUserID(), "scroll_page", nil, time.Now())
	assert.False(t, finding.Suspicious)
	assert.Nil(t, finding.Flag)
}

func TestDetect_EleventhAttemptInWindowFires(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// Ten prior events in the trailing minute; the current attempt is the
	// eleventh, one above the default threshold of 10.
	offsets := make([]time.Duration, 0, 10)
	for i := 0; i < 10; i++ {
		offsets = append(offsets, time.Duration(3+i*5)*time.Second)
	}
	finding := d.Detect(user, "scroll_page", eventsAt(user, now, offsets...), now)

	require.True(t, finding.Suspicious)
	require.NotNil(t, finding.Flag)
	assert.Equal(t, models.FlagRapidFire, finding.Flag.FlagType)
	assert.Equal(t, 11, finding.Flag.Evidence["count"])
	assert.Equal(t, 60, finding.Flag.Evidence["window_seconds"])
}

func TestDetect_TenthAttemptDoesNotFire(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Now()

	// Nine prior events plus the attempt is exactly the threshold.
	// Jittered spacing keeps the regularity check quiet.
	offsets := make([]time.Duration, 0, 9)
	for i := 1; i <= 9; i++ {
		offsets = append(offsets, time.Duration(i*i)*400*time.Millisecond)
	}
	finding := d.Detect(user, "scroll_page", eventsAt(user, now, offsets...), now)
	assert.False(t, finding.Suspicious, "exactly at threshold is still allowed")
}

func TestDetect_BurstIgnoresEventsOutsideWindow(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Now()

	// Eleven prior events, but only three inside the trailing minute.
	offsets := []time.Duration{5 * time.Second, 20 * time.Second, 45 * time.Second}
	for i := 0; i < 8; i++ {
		offsets = append(offsets, time.Duration(90+i*37)*time.Second)
	}
	finding := d.Detect(user, "scroll_page", eventsAt(user, now, offsets...), now)
	assert.False(t, finding.Suspicious)
}

func TestDetect_RegularTiming(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// Four prior events, each roughly two seconds apart with +/-10ms of
	// jitter, and the attempt lands right on the beat: a scripted client
	// with a fixed sleep.
	events := eventsAt(user, now,
		2*time.Second+10*time.Millisecond,
		4*time.Second,
		6*time.Second-10*time.Millisecond,
		8*time.Second,
	)
	finding := d.Detect(user, "scroll_page", events, now)

	require.True(t, finding.Suspicious)
	require.NotNil(t, finding.Flag)
	assert.Equal(t, models.FlagRegularTiming, finding.Flag.FlagType)
	variance, ok := finding.Flag.Evidence["variance_ms2"].(float64)
	require.True(t, ok)
	assert.Less(t, variance, 10_000.0)
	assert.InDelta(t, 2000, finding.Flag.Evidence["avg_delta_ms"], 50)
}

func TestDetect_HumanTimingDoesNotFire(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Now()

	// Deltas of 500ms, 4000ms, 1200ms, 3000ms: noisy, human-looking gaps.
	events := eventsAt(user, now,
		500*time.Millisecond,
		4500*time.Millisecond,
		5700*time.Millisecond,
		8700*time.Millisecond,
	)
	finding := d.Detect(user, "scroll_page", events, now)
	assert.False(t, finding.Suspicious)
}

func TestDetect_TooFewEventsForRegularity(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Now()

	events := eventsAt(user, now, 2*time.Second, 4*time.Second, 6*time.Second)
	finding := d.Detect(user, "scroll_page", events, now)
	assert.False(t, finding.Suspicious, "three prior events cannot fill the sample")
}

func TestDetect_RegularityIgnoresEventsOutsideLookback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BurstWindow = 10 * time.Minute
	d := New(cfg)
	user := id.NewUserID()
	now := time.Now()

	// A steady two-minute beat, but only the two newest prior events fall
	// inside the five-minute regularity lookback. The wider pool exists for
	// burst counting; the stale tail must not fill the regularity sample.
	events := eventsAt(user, now, 2*time.Minute, 4*time.Minute, 6*time.Minute, 8*time.Minute)
	finding := d.Detect(user, "scroll_page", events, now)
	assert.False(t, finding.Suspicious)
}

func TestDetect_BurstWinsOverRegularity(t *testing.T) {
	d := New(nil)
	user := id.NewUserID()
	now := time.Now()

	// Twelve perfectly regular events inside the burst window would trip
	// both heuristics; only the burst flag is produced.
	offsets := make([]time.Duration, 0, 12)
	for i := 1; i <= 12; i++ {
		offsets = append(offsets, time.Duration(i*2)*time.Second)
	}
	finding := d.Detect(user, "scroll_page", eventsAt(user, now, offsets...), now)

	require.True(t, finding.Suspicious)
	assert.Equal(t, models.FlagRapidFire, finding.Flag.FlagType)
}

func TestDetect_CustomThresholds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BurstThreshold = 2
	d := New(cfg)
	user := id.NewUserID()
	now := time.Now()

	events := eventsAt(user, now, 5*time.Second, 15*time.Second)
	finding := d.Detect(user, "scroll_page", events, now)

	require.True(t, finding.Suspicious)
	assert.Equal(t, models.FlagRapidFire, finding.Flag.FlagType)
}
