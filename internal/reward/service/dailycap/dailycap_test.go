package dailycap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

type stubCounter struct {
	count int
	err   error

	gotStart, gotEnd time.Time
}

func (s *stubCounter) CountInWindow(_ context.Context, _ id.UserID, _ id.Action, start, end time.Time) (int, error) {
	s.gotStart, s.gotEnd = start, end
	return s.count, s.err
}

func cappedRule(limit int) *models.ActionRule {
	return &models.ActionRule{
		Action:    "view_product",
		MaxPerDay: &limit,
		Amount:    5,
		IsActive:  true,
	}
}

func TestCheck_UncappedRule(t *testing.T) {
	rule := &models.ActionRule{Action: "scroll_page", Amount: 1, IsActive: true}
	counter := &stubCounter{err: errors.New("must not be called")}

	d, err := Check(context.Background(), counter, rule, id.NewUserID(), time.Now())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestCheck_UnderCap(t *testing.T) {
	counter := &stubCounter{count: 19}
	d, err := Check(context.Background(), counter, cappedRule(20), id.NewUserID(), time.Now())
	require.NoError(t, err)
	assert.True(t, d.Allowed, "19 of 20 used, one left")
}

func TestCheck_AtCap(t *testing.T) {
	now := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	counter := &stubCounter{count: 20}

	d, err := Check(context.Background(), counter, cappedRule(20), id.NewUserID(), now)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, models.ReasonDailyLimitReached, d.Reason)
	assert.Equal(t, 6*60*60, d.RetryAfterSeconds, "retry hint points at midnight")
}

func TestCheck_WindowIsCalendarDay(t *testing.T) {
	now := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	counter := &stubCounter{count: 0}

	_, err := Check(context.Background(), counter, cappedRule(3), id.NewUserID(), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), counter.gotStart)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), counter.gotEnd)
}

func TestCheck_StoreError(t *testing.T) {
	counter := &stubCounter{err: errors.New("connection refused")}
	_, err := Check(context.Background(), counter, cappedRule(3), id.NewUserID(), time.Now())
	assert.Error(t, err)
}
