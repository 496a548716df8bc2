package services_test

import (
	"context"
	"testing"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories/memory"
	"github.com/goldspin/casino-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTicketService(store *memory.Store) *services.TicketServiceImpl {
	return services.NewTicketService(store.Pools(), store.Tickets(), store.PendingTickets(), store.TicketCounts())
}

func TestIssueTicketsDenseNumbering(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := newTicketService(store)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	first, err := svc.IssueTickets(context.Background(), pool.ID, alice, 3000, "tx-1")
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := svc.IssueTickets(context.Background(), pool.ID, bob, 2000, "tx-2")
	require.NoError(t, err)
	require.Len(t, second, 2)

	// Numbers are dense and strictly increasing across issuers.
	for i, ticket := range first {
		assert.Equal(t, int64(i+1), ticket.TicketNumber)
		assert.Equal(t, int64(1), ticket.DrawNumber)
		assert.True(t, ticket.DrawEligible)
	}
	assert.Equal(t, int64(4), second[0].TicketNumber)
	assert.Equal(t, int64(5), second[1].TicketNumber)

	total, err := store.Tickets().CountEligible(context.Background(), pool.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestIssueTicketsFloorsPartialWagers(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store) // ticket cost 1000
	svc := newTicketService(store)
	userID := primitive.NewObjectID()

	tickets, err := svc.IssueTickets(context.Background(), pool.ID, userID, 2500, "tx-1")
	require.NoError(t, err)
	assert.Len(t, tickets, 2) // remainder 500 earns nothing

	tickets, err = svc.IssueTickets(context.Background(), pool.ID, userID, 999, "tx-2")
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestProcessWagerAccruesContribution(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store) // 500 bps contribution
	svc := newTicketService(store)
	userID := primitive.NewObjectID()

	require.NoError(t, svc.ProcessWager(context.Background(), userID, 10000, "tx-1"))

	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), after.CurrentAmount) // 10000 + 10000*5%

	count, err := svc.GetTicketCount(context.Background(), pool.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}

func TestProcessWagerSkipsPausedPools(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	_, err := store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusActive, models.PoolStatusPaused)
	require.NoError(t, err)

	svc := newTicketService(store)
	require.NoError(t, svc.ProcessWager(context.Background(), primitive.NewObjectID(), 10000, "tx-1"))

	after, err := store.Pools().FindByID(context.Background(), pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), after.CurrentAmount)

	total, err := store.Tickets().CountEligible(context.Background(), pool.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIssueTicketsDeferredWhileDrawing(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := newTicketService(store)
	userID := primitive.NewObjectID()

	_, err := store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusActive, models.PoolStatusDrawing)
	require.NoError(t, err)

	tickets, err := svc.IssueTickets(context.Background(), pool.ID, userID, 3000, "tx-1")
	require.NoError(t, err)
	assert.Empty(t, tickets)

	// Nothing lands in the ledger while the draw is running.
	total, err := store.Tickets().CountEligible(context.Background(), pool.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, total)

	// Once the pool is back to ACTIVE the flush replays the queued wager.
	_, err = store.Pools().TransitionStatus(context.Background(), pool.ID, models.PoolStatusDrawing, models.PoolStatusActive)
	require.NoError(t, err)
	require.NoError(t, svc.FlushPending(context.Background(), pool.ID))

	total, err = store.Tickets().CountEligible(context.Background(), pool.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestGetOdds(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := newTicketService(store)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	_, err := svc.IssueTickets(context.Background(), pool.ID, alice, 25000, "tx-1")
	require.NoError(t, err)
	_, err = svc.IssueTickets(context.Background(), pool.ID, bob, 75000, "tx-2")
	require.NoError(t, err)

	odds, err := svc.GetOdds(context.Background(), pool.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(25), odds.TicketsHeld)
	assert.Equal(t, int64(100), odds.TotalTickets)
	assert.InDelta(t, 25.0, odds.OddsPercentage, 0.0001)
}

func TestGetOddsNoTickets(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := newTicketService(store)

	odds, err := svc.GetOdds(context.Background(), pool.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Zero(t, odds.TicketsHeld)
	assert.Zero(t, odds.OddsPercentage)
}

func TestReconcileCorrectsDrift(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	svc := newTicketService(store)
	userID := primitive.NewObjectID()

	_, err := svc.IssueTickets(context.Background(), pool.ID, userID, 7000, "tx-1")
	require.NoError(t, err)

	// Corrupt the aggregate; the ledger stays authoritative.
	require.NoError(t, store.TicketCounts().Set(context.Background(), pool.ID, userID, 1, 99))

	require.NoError(t, svc.Reconcile(context.Background(), pool.ID))

	count, err := svc.GetTicketCount(context.Background(), pool.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestReconcileBackfillsMissingAggregate(t *testing.T) {
	store := memory.NewStore()
	pool := newTestPool(t, store)
	userID := primitive.NewObjectID()

	// Tickets written straight to the ledger, no aggregate row.
	require.NoError(t, store.Tickets().CreateMany(context.Background(), []*models.JackpotTicket{
		{PoolID: pool.ID, UserID: userID, DrawNumber: 1, TicketNumber: 1, DrawEligible: true},
		{PoolID: pool.ID, UserID: userID, DrawNumber: 1, TicketNumber: 2, DrawEligible: true},
	}))

	svc := newTicketService(store)
	require.NoError(t, svc.Reconcile(context.Background(), pool.ID))

	count, err := svc.GetTicketCount(context.Background(), pool.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
