package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories/memory"
	"github.com/goldspin/casino-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePoolDefaults(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewPoolService(store.Pools())

	pool, err := svc.CreatePool(context.Background(), &models.JackpotPool{
		Name:                "Weekly Mega",
		PoolType:            models.PoolTypeWeekly,
		Currency:            "USD",
		SeedAmount:          50000,
		ContributionRateBps: 200,
		TicketCost:          500,
		Tiers: []models.PrizeTier{
			{Name: "GRAND", TierOrder: 1, WinnerCount: 1, PoolShareBps: 10000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PoolStatusActive, pool.Status)
	assert.Equal(t, int64(50000), pool.CurrentAmount)
	assert.Equal(t, int64(1), pool.DrawNumber)
	assert.Zero(t, pool.TicketCounter)
	assert.True(t, pool.NextDrawAt.After(time.Now()))
	assert.Equal(t, time.Saturday, pool.NextDrawAt.Weekday())
}

func TestCreatePoolRejectsBadTiers(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewPoolService(store.Pools())

	base := func(tiers []models.PrizeTier) *models.JackpotPool {
		return &models.JackpotPool{
			Name:                "Daily",
			PoolType:            models.PoolTypeDaily,
			Currency:            "USD",
			ContributionRateBps: 100,
			TicketCost:          500,
			Tiers:               tiers,
		}
	}

	cases := map[string][]models.PrizeTier{
		"no tiers": nil,
		"shares over 100%": {
			{Name: "GRAND", TierOrder: 1, WinnerCount: 1, PoolShareBps: 8000},
			{Name: "MAJOR", TierOrder: 2, WinnerCount: 2, PoolShareBps: 3000},
		},
		"duplicate name": {
			{Name: "GRAND", TierOrder: 1, WinnerCount: 1, PoolShareBps: 4000},
			{Name: "GRAND", TierOrder: 2, WinnerCount: 1, PoolShareBps: 4000},
		},
		"duplicate order": {
			{Name: "GRAND", TierOrder: 1, WinnerCount: 1, PoolShareBps: 4000},
			{Name: "MAJOR", TierOrder: 1, WinnerCount: 1, PoolShareBps: 4000},
		},
		"zero winners": {
			{Name: "GRAND", TierOrder: 1, WinnerCount: 0, PoolShareBps: 4000},
		},
	}
	for name, tiers := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreatePool(context.Background(), base(tiers))
			assert.ErrorIs(t, err, services.ErrInvalidTiers)
		})
	}
}

func TestPauseAndResumePool(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := services.NewPoolService(store.Pools())

	require.NoError(t, svc.PausePool(context.Background(), pool.ID))
	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusPaused, after.Status)

	// Pausing twice is a conflict, not a silent no-op.
	assert.Error(t, svc.PausePool(context.Background(), pool.ID))

	require.NoError(t, svc.ResumePool(context.Background(), pool.ID))
	after, err = store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusActive, after.Status)
}

func TestPausePoolWhileDrawing(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	_, err := store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusActive, models.PoolStatusDrawing)
	require.NoError(t, err)

	svc := services.NewPoolService(store.Pools())
	assert.ErrorIs(t, svc.PausePool(context.Background(), pool.ID), services.ErrAlreadyDrawing)
}

func TestGetPoolStatus(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := services.NewPoolService(store.Pools())

	status, err := svc.GetPoolStatus(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, pool.ID, status.PoolID)
	assert.Equal(t, int64(10000), status.CurrentAmount)
	assert.Equal(t, int64(1), status.DrawNumber)
	assert.Greater(t, status.NextDrawIn, int64(0))
	assert.Len(t, status.Tiers, 3)
}

func TestUpdateTiersTakesEffect(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := services.NewPoolService(store.Pools())

	err := svc.UpdateTiers(context.Background(), pool.ID, []models.PrizeTier{
		{Name: "GRAND", TierOrder: 1, WinnerCount: 2, PoolShareBps: 5000},
	})
	require.NoError(t, err)

	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Len(t, after.Tiers, 1)
	assert.Equal(t, 2, after.Tiers[0].WinnerCount)
}
