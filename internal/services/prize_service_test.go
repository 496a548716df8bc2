package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories/memory"
	"github.com/goldspin/casino-backend/internal/services"
	"github.com/goldspin/casino-backend/pkg/smsgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPrizeService(store *memory.Store) *services.PrizeServiceImpl {
	wallet := services.NewWalletService(store.Wallet(), store.Users())
	return services.NewPrizeService(store.Winners(), store.Users(), wallet, smsgateway.NewMockGateway())
}

func seedWinner(t *testing.T, store *memory.Store, prize int64) (*models.User, *models.JackpotWinner) {
	t.Helper()
	user := &models.User{Username: "player1", Phone: "+15550001111", Currency: "USD"}
	require.NoError(t, store.Users().Create(context.Background(), user))

	winner := &models.JackpotWinner{
		DrawID:              primitive.NewObjectID(),
		PoolID:              primitive.NewObjectID(),
		UserID:              user.ID,
		TierName:            "GRAND",
		TierOrder:           1,
		WinningTicketNumber: 7,
		PrizeAmount:         prize,
		Currency:            "USD",
	}
	require.NoError(t, store.Winners().CreateMany(context.Background(), []*models.JackpotWinner{winner}))
	return user, winner
}

func TestCreditWinnerPaysOnce(t *testing.T) {
	store := memory.NewStore()
	user, winner := seedWinner(t, store, 6000)
	svc := newPrizeService(store)

	txID, err := svc.CreditWinner(context.Background(), winner.ID)
	require.NoError(t, err)
	require.NotEmpty(t, txID)

	// Replay converges on the original transaction.
	again, err := svc.CreditWinner(context.Background(), winner.ID)
	require.NoError(t, err)
	assert.Equal(t, txID, again)

	after, err := store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), after.Balance)

	txs, err := store.Wallet().FindByUser(context.Background(), user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionTypeJackpotPrize, txs[0].Type)
	assert.Equal(t, int64(6000), txs[0].Amount)

	w, err := store.Winners().FindByID(context.Background(), winner.ID)
	require.NoError(t, err)
	assert.True(t, w.PrizeCredited)
	assert.Equal(t, txID, w.CreditedTransactionID)
	assert.False(t, w.NotifiedAt.IsZero())
}

func TestCreditWinnerConcurrent(t *testing.T) {
	store := memory.NewStore()
	user, winner := seedWinner(t, store, 6000)
	svc := newPrizeService(store)

	var wg sync.WaitGroup
	txIDs := make([]string, 4)
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txIDs[i], errs[i] = svc.CreditWinner(context.Background(), winner.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, id := range txIDs {
		assert.Equal(t, txIDs[0], id)
	}

	after, err := store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), after.Balance)

	txs, err := store.Wallet().FindByUser(context.Background(), user.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestCreditDrawWinnersFansOut(t *testing.T) {
	store := memory.NewStore()
	drawID := primitive.NewObjectID()

	var userIDs []primitive.ObjectID
	var winners []*models.JackpotWinner
	for i := 0; i < 3; i++ {
		user := &models.User{Username: "player", Currency: "USD"}
		require.NoError(t, store.Users().Create(context.Background(), user))
		userIDs = append(userIDs, user.ID)
		winners = append(winners, &models.JackpotWinner{
			DrawID:              drawID,
			PoolID:              primitive.NewObjectID(),
			UserID:              user.ID,
			TierName:            "MAJOR",
			TierOrder:           2,
			WinningTicketNumber: int64(i + 1),
			PrizeAmount:         1000,
			Currency:            "USD",
		})
	}
	require.NoError(t, store.Winners().CreateMany(context.Background(), winners))

	svc := newPrizeService(store)
	require.NoError(t, svc.CreditDrawWinners(context.Background(), drawID))

	for _, id := range userIDs {
		user, err := store.Users().FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Balance)
	}

	// Second pass is a no-op.
	require.NoError(t, svc.CreditDrawWinners(context.Background(), drawID))
	for _, id := range userIDs {
		user, err := store.Users().FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Balance)
	}
}

func TestCreditWinnerNotFound(t *testing.T) {
	store := memory.NewStore()
	svc := newPrizeService(store)

	_, err := svc.CreditWinner(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, services.ErrNotFound)
}
