package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"github.com/goldspin/casino-backend/internal/repositories/memory"
	"github.com/goldspin/casino-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPool(t *testing.T, store *memory.Store) *models.JackpotPool {
	t.Helper()
	pool := &models.JackpotPool{
		Name:                "Daily Jackpot",
		PoolType:            models.PoolTypeDaily,
		Currency:            "USD",
		CurrentAmount:       10000,
		SeedAmount:          5000,
		ContributionRateBps: 500,
		TicketCost:          1000,
		Status:              models.PoolStatusActive,
		DrawNumber:          1,
		NextDrawAt:          time.Now().Add(time.Hour),
		Tiers: []models.PrizeTier{
			{Name: "GRAND", TierOrder: 1, WinnerCount: 1, PoolShareBps: 6000},
			{Name: "MAJOR", TierOrder: 2, WinnerCount: 3, PoolShareBps: 3000},
			{Name: "MINOR", TierOrder: 3, WinnerCount: 10, PoolShareBps: 1000},
		},
	}
	require.NoError(t, store.Pools().Create(context.Background(), pool))
	return pool
}

func newDrawService(store *memory.Store) *services.DrawServiceImpl {
	return services.NewDrawService(store.Pools(), store.Tickets(), store.Draws(),
		store.Winners(), store.Blacklist(), 10*time.Minute)
}

// issueTicketsForUsers gives each of n users ticketsEach tickets and returns
// the user ids.
func issueTicketsForUsers(t *testing.T, store *memory.Store, pool *models.JackpotPool, n, ticketsEach int) []primitive.ObjectID {
	t.Helper()
	svc := services.NewTicketService(store.Pools(), store.Tickets(), store.PendingTickets(), store.TicketCounts())
	users := make([]primitive.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		userID := primitive.NewObjectID()
		users = append(users, userID)
		wager := pool.TicketCost * int64(ticketsEach)
		_, err := svc.IssueTickets(context.Background(), pool.ID, userID, wager, primitive.NewObjectID().Hex())
		require.NoError(t, err)
	}
	return users
}

func TestExecuteDrawSelectsTieredWinners(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	issueTicketsForUsers(t, store, pool, 50, 10) // 500 tickets across 50 users

	svc := newDrawService(store)
	draw, err := svc.ExecuteDraw(context.Background(), pool.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), draw.DrawNumber)
	assert.Equal(t, int64(500), draw.TotalTickets)
	assert.Equal(t, int64(10000), draw.TotalPoolAmount)
	assert.Equal(t, 14, draw.TotalWinners)
	assert.NotZero(t, draw.RandomSeed)

	winners, err := svc.GetWinnersByDraw(context.Background(), draw.ID)
	require.NoError(t, err)
	require.Len(t, winners, 14)

	prizeByTier := map[string]int64{}
	countByTier := map[string]int{}
	seenNumbers := map[int64]bool{}
	seenUsers := map[primitive.ObjectID]bool{}
	var totalPaid int64
	for _, w := range winners {
		prizeByTier[w.TierName] = w.PrizeAmount
		countByTier[w.TierName]++
		totalPaid += w.PrizeAmount

		assert.False(t, seenNumbers[w.WinningTicketNumber], "ticket number drawn twice")
		assert.False(t, seenUsers[w.UserID], "user won twice in one draw")
		seenNumbers[w.WinningTicketNumber] = true
		seenUsers[w.UserID] = true

		assert.GreaterOrEqual(t, w.WinningTicketNumber, int64(1))
		assert.LessOrEqual(t, w.WinningTicketNumber, int64(500))
		assert.Equal(t, int64(10), w.TicketsHeld)
		assert.Equal(t, int64(500), w.TotalTicketsInPool)
		assert.InDelta(t, 2.0, w.WinOddsPercentage, 0.0001)
		assert.False(t, w.PrizeCredited)
	}

	assert.Equal(t, int64(6000), prizeByTier["GRAND"])
	assert.Equal(t, int64(1000), prizeByTier["MAJOR"])
	assert.Equal(t, int64(100), prizeByTier["MINOR"])
	assert.Equal(t, 1, countByTier["GRAND"])
	assert.Equal(t, 3, countByTier["MAJOR"])
	assert.Equal(t, 10, countByTier["MINOR"])
	assert.LessOrEqual(t, totalPaid, int64(10000))

	// Pool reset: distributed amount out, seed in, next cycle armed.
	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusActive, after.Status)
	assert.Equal(t, int64(5000), after.CurrentAmount)
	assert.Equal(t, int64(2), after.DrawNumber)
	assert.Equal(t, int64(0), after.TicketCounter)
	assert.True(t, after.NextDrawAt.After(time.Now()))
}

func TestExecuteDrawNoTicketsAborts(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)

	svc := newDrawService(store)
	_, err := svc.ExecuteDraw(context.Background(), pool.ID)
	assert.ErrorIs(t, err, services.ErrNoEligibleTickets)

	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusActive, after.Status)
	assert.Equal(t, int64(1), after.DrawNumber)
	assert.Equal(t, int64(10000), after.CurrentAmount)
}

func TestExecuteDrawConcurrentTriggersRunOnce(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	issueTicketsForUsers(t, store, pool, 20, 5)

	svc := newDrawService(store)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ExecuteDraw(context.Background(), pool.ID)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			// The loser either hit the in-flight draw or ran after it against
			// the empty next cycle.
			assert.True(t,
				err == services.ErrAlreadyDrawing ||
					err == services.ErrNoEligibleTickets ||
					err == services.ErrPoolNotActive,
				"unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	draws, err := store.Draws().FindByPool(context.Background(), pool.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, int64(1), draws[0].DrawNumber)
}

func TestExecuteDrawPausedPoolRejected(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	issueTicketsForUsers(t, store, pool, 5, 2)
	_, err := store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusActive, models.PoolStatusPaused)
	require.NoError(t, err)

	svc := newDrawService(store)
	_, err = svc.ExecuteDraw(context.Background(), pool.ID)
	assert.ErrorIs(t, err, services.ErrPoolNotActive)
}

func TestExecuteDrawSkipsBlacklistedUsers(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	users := issueTicketsForUsers(t, store, pool, 15, 2)

	// Blacklist one user; they must never appear among the winners.
	banned := users[0]
	require.NoError(t, store.Blacklist().Add(context.Background(), &models.BlacklistEntry{
		UserID: banned,
		Reason: "fraud review",
	}))

	svc := newDrawService(store)
	draw, err := svc.ExecuteDraw(context.Background(), pool.ID)
	require.NoError(t, err)

	winners, err := svc.GetWinnersByDraw(context.Background(), draw.ID)
	require.NoError(t, err)
	for _, w := range winners {
		assert.NotEqual(t, banned, w.UserID)
	}
}

func TestExecuteDrawFewerUsersThanWinnerSlots(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	// 5 users cannot fill 14 winner slots; the draw still commits and the
	// unawarded share stays in the pool.
	issueTicketsForUsers(t, store, pool, 5, 4)

	svc := newDrawService(store)
	draw, err := svc.ExecuteDraw(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, draw.TotalWinners)

	winners, err := svc.GetWinnersByDraw(context.Background(), draw.ID)
	require.NoError(t, err)
	var totalPaid int64
	seenUsers := map[primitive.ObjectID]bool{}
	for _, w := range winners {
		assert.False(t, seenUsers[w.UserID])
		seenUsers[w.UserID] = true
		totalPaid += w.PrizeAmount
	}
	assert.LessOrEqual(t, totalPaid, int64(10000))
}

// flakyPoolRepo fails CompleteDraw a set number of times before delegating
type flakyPoolRepo struct {
	repositories.PoolRepository
	mu       sync.Mutex
	failures int
}

func (r *flakyPoolRepo) CompleteDraw(ctx context.Context, id primitive.ObjectID, distributedAmount, seedAmount int64, nextDrawAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("write concern timeout")
	}
	return r.PoolRepository.CompleteDraw(ctx, id, distributedAmount, seedAmount, nextDrawAt)
}

func TestExecuteDrawFailedCommitLeavesNoTrace(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	users := issueTicketsForUsers(t, store, pool, 20, 5)

	pools := &flakyPoolRepo{PoolRepository: store.Pools(), failures: 1}
	svc := services.NewDrawService(pools, store.Tickets(), store.Draws(),
		store.Winners(), store.Blacklist(), 10*time.Minute)

	_, err := svc.ExecuteDraw(context.Background(), pool.ID)
	require.Error(t, err)

	// The failed attempt leaves nothing behind: pool untouched, no draw
	// record, no creditable winner rows.
	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusActive, after.Status)
	assert.Equal(t, int64(10000), after.CurrentAmount)
	assert.Equal(t, int64(1), after.DrawNumber)

	draws, err := store.Draws().FindByPool(context.Background(), pool.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, draws)
	for _, userID := range users {
		wins, err := store.Winners().FindByUserID(context.Background(), userID, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, wins)
	}

	// The retry runs the same cycle once, and its winners are the only
	// creditable rows: one draw's payout, not two.
	draw, err := svc.ExecuteDraw(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), draw.DrawNumber)

	draws, err = store.Draws().FindByPool(context.Background(), pool.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, draw.ID, draws[0].ID)

	winners, err := svc.GetWinnersByDraw(context.Background(), draw.ID)
	require.NoError(t, err)
	var totalPayable int64
	for _, userID := range users {
		wins, err := store.Winners().FindByUserID(context.Background(), userID, 1, 10)
		require.NoError(t, err)
		for _, w := range wins {
			assert.Equal(t, draw.ID, w.DrawID)
			totalPayable += w.PrizeAmount
		}
	}
	require.Len(t, winners, draw.TotalWinners)
	assert.LessOrEqual(t, totalPayable, int64(10000))
}

func TestExecuteDrawReachesTicketsAboveFailedRange(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	require.NoError(t, store.Pools().UpdateTiers(context.Background(), pool.ID, []models.PrizeTier{
		{Name: "GRAND", TierOrder: 1, WinnerCount: 2, PoolShareBps: 10000},
	}))

	// Ticket 1, then a reserved range whose ledger insert never landed
	// (numbers 2-6 exist only on the counter), then ticket 7.
	userA := issueTicketsForUsers(t, store, pool, 1, 1)[0]
	_, err := store.Pools().ReserveTickets(context.Background(), pool.ID, 5)
	require.NoError(t, err)
	userB := issueTicketsForUsers(t, store, pool, 1, 1)[0]

	svc := newDrawService(store)
	draw, err := svc.ExecuteDraw(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), draw.TotalTickets)
	assert.Equal(t, 2, draw.TotalWinners)

	// Both tickets must be drawable, including the one numbered above the
	// eligible count.
	winners, err := svc.GetWinnersByDraw(context.Background(), draw.ID)
	require.NoError(t, err)
	won := map[primitive.ObjectID]bool{}
	numbers := []int64{}
	for _, w := range winners {
		won[w.UserID] = true
		numbers = append(numbers, w.WinningTicketNumber)
		assert.Equal(t, int64(2), w.TotalTicketsInPool)
		assert.Equal(t, int64(5000), w.PrizeAmount)
	}
	assert.True(t, won[userA])
	assert.True(t, won[userB])
	assert.ElementsMatch(t, []int64{1, 7}, numbers)
}

func TestRecoverStuckDraws(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	_, err := store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusActive, models.PoolStatusDrawing)
	require.NoError(t, err)

	svc := services.NewDrawService(store.Pools(), store.Tickets(), store.Draws(),
		store.Winners(), store.Blacklist(), time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	recovered, err := svc.RecoverStuckDraws(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)

	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusActive, after.Status)
}

func TestRecoverStuckDrawsLeavesFreshDrawsAlone(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	_, err := store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusActive, models.PoolStatusDrawing)
	require.NoError(t, err)

	svc := newDrawService(store) // 10 minute grace
	recovered, err := svc.RecoverStuckDraws(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, recovered)

	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PoolStatusDrawing, after.Status)
}
