package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/sentinel"
)

func newEvent(userID id.UserID, action id.Action, at time.Time) *models.ActionEvent {
	return &models.ActionEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Amount:    10,
		CreatedAt: at,
	}
}

func TestMemoryStore_MostRecent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := id.NewUserID()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.MostRecent(ctx, user, "scroll_page")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Append(ctx, newEvent(user, "scroll_page", base)))
	require.NoError(t, store.Append(ctx, newEvent(user, "scroll_page", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, newEvent(user, "scroll_page", base.Add(30*time.Second))))

	latest, err := store.MostRecent(ctx, user, "scroll_page")
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Minute), latest.CreatedAt)
}

func TestMemoryStore_MostRecent_IsolatedPerPair(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice, bob := id.NewUserID(), id.NewUserID()
	now := time.Now()

	require.NoError(t, store.Append(ctx, newEvent(alice, "daily_login", now)))

	_, err := store.MostRecent(ctx, bob, "daily_login")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.MostRecent(ctx, alice, "scroll_page")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryStore_CountInWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := id.NewUserID()
	dayStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// One event the day before, three inside, one exactly at the end bound.
	require.NoError(t, store.Append(ctx, newEvent(user, "view_product", dayStart.Add(-time.Hour))))
	for _, offset := range []time.Duration{0, 8 * time.Hour, 23 * time.Hour} {
		require.NoError(t, store.Append(ctx, newEvent(user, "view_product", dayStart.Add(offset))))
	}
	require.NoError(t, store.Append(ctx, newEvent(user, "view_product", dayEnd)))

	count, err := store.CountInWindow(ctx, user, "view_product", dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "window is half-open: start inclusive, end exclusive")
}

func TestMemoryStore_ListSince_MostRecentFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := id.NewUserID()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{time.Minute, 3 * time.Minute, 2 * time.Minute} {
		require.NoError(t, store.Append(ctx, newEvent(user, "scroll_page", base.Add(offset))))
	}

	list, err := store.ListSince(ctx, user, "scroll_page", base.Add(90*time.Second))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, base.Add(3*time.Minute), list[0].CreatedAt)
	assert.Equal(t, base.Add(2*time.Minute), list[1].CreatedAt)
}

func TestMemoryStore_AppendStoresCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := id.NewUserID()

	event := newEvent(user, "daily_login", time.Now())
	require.NoError(t, store.Append(ctx, event))
	event.Amount = 9999

	got, err := store.MostRecent(ctx, user, "daily_login")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Amount)
}
