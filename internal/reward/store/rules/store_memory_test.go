package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/sentinel"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "daily_login")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	limit := 3
	rule := &models.ActionRule{
		Action:          "scroll_page",
		CooldownSeconds: 30,
		MaxPerDay:       &limit,
		Amount:          5,
		IsActive:        true,
	}
	require.NoError(t, store.Put(ctx, rule))

	got, err := store.Get(ctx, "scroll_page")
	require.NoError(t, err)
	assert.Equal(t, rule.Action, got.Action)
	assert.Equal(t, 30, got.CooldownSeconds)
	require.NotNil(t, got.MaxPerDay)
	assert.Equal(t, 3, *got.MaxPerDay)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.ActionRule{Action: "daily_login", IsActive: true}))

	got, err := store.Get(ctx, "daily_login")
	require.NoError(t, err)
	got.IsActive = false

	again, err := store.Get(ctx, "daily_login")
	require.NoError(t, err)
	assert.True(t, again.IsActive, "mutating a returned rule must not affect the store")
}

func TestMemoryStore_ListSorted(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, action := range []string{"scroll_page", "daily_login", "view_product"} {
		require.NoError(t, store.Put(ctx, &models.ActionRule{Action: id.Action(action), IsActive: true}))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, id.Action("daily_login"), list[0].Action)
	assert.Equal(t, id.Action("scroll_page"), list[1].Action)
	assert.Equal(t, id.Action("view_product"), list[2].Action)
}
