package services

import (
	"context"
	"errors"

	"github.com/goldspin/casino-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service-level error taxonomy. AlreadyDrawing and NoEligibleTickets are
// reported to the caller and never retried automatically; persistence
// failures are wrapped and the scheduler retries the whole operation from a
// clean state.
var (
	ErrAlreadyDrawing     = errors.New("a draw is already in progress for this pool")
	ErrNoEligibleTickets  = errors.New("no eligible tickets for the current cycle")
	ErrPoolNotActive      = errors.New("pool is not active")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTiers       = errors.New("invalid prize tier configuration")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PoolService manages jackpot pool configuration and the operator-facing
// state machine (pause/resume).
type PoolService interface {
	CreatePool(ctx context.Context, pool *models.JackpotPool) (*models.JackpotPool, error)
	GetPool(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotPool, error)
	// GetPools lists pools, optionally filtered by status ("" = all).
	GetPools(ctx context.Context, status models.PoolStatus) ([]*models.JackpotPool, error)
	GetPoolStatus(ctx context.Context, poolID primitive.ObjectID) (*models.PoolStatusResponse, error)
	UpdateTiers(ctx context.Context, poolID primitive.ObjectID, tiers []models.PrizeTier) error
	PausePool(ctx context.Context, poolID primitive.ObjectID) error
	ResumePool(ctx context.Context, poolID primitive.ObjectID) error
}

// TicketService is the ticket ledger and the player ticket aggregate
type TicketService interface {
	// ProcessWager routes a settled wager into every participating pool:
	// contribution accrual plus ticket issuance (wager / ticketCost, floored).
	ProcessWager(ctx context.Context, userID primitive.ObjectID, wagerAmount int64, sourceTransactionID string) error

	// IssueTickets issues tickets for one pool. Wagers that arrive while the
	// pool is DRAWING are queued and issued into the next cycle.
	IssueTickets(ctx context.Context, poolID, userID primitive.ObjectID, wagerAmount int64, sourceTransactionID string) ([]*models.JackpotTicket, error)

	// FlushPending drains the pending queue after a draw commits.
	FlushPending(ctx context.Context, poolID primitive.ObjectID) error

	GetTicketCount(ctx context.Context, poolID, userID primitive.ObjectID) (int64, error)
	GetTickets(ctx context.Context, poolID, userID primitive.ObjectID, page, limit int) ([]*models.JackpotTicket, error)
	GetOdds(ctx context.Context, poolID, userID primitive.ObjectID) (*models.TicketOddsResponse, error)

	// Reconcile recomputes the aggregate from the ledger and corrects drift.
	Reconcile(ctx context.Context, poolID primitive.ObjectID) error
}

// DrawService is the draw engine
type DrawService interface {
	ExecuteDraw(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotDraw, error)
	GetDraw(ctx context.Context, drawID primitive.ObjectID) (*models.DrawWithWinners, error)
	GetLatestDraw(ctx context.Context, poolID primitive.ObjectID) (*models.DrawWithWinners, error)
	GetDrawHistory(ctx context.Context, poolID primitive.ObjectID, page, limit int) ([]*models.JackpotDraw, error)
	GetWinnersByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.JackpotWinner, error)
	GetWinnersByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.JackpotWinner, error)

	// RecoverStuckDraws force-reverts pools left in DRAWING beyond the grace
	// period, so a crashed draw can never wedge a pool.
	RecoverStuckDraws(ctx context.Context) (int, error)
}

// PrizeService is the crediting workflow
type PrizeService interface {
	// CreditWinner is idempotent: re-invocation returns the transaction id of
	// the original credit without paying twice.
	CreditWinner(ctx context.Context, winnerID primitive.ObjectID) (string, error)

	// CreditDrawWinners fans out crediting over every winner of a draw.
	CreditDrawWinners(ctx context.Context, drawID primitive.ObjectID) error
}

// WalletService is the balance ledger collaborator
type WalletService interface {
	// Credit records a credit transaction under the given idempotency
	// reference and returns its transaction id.
	Credit(ctx context.Context, userID primitive.ObjectID, amount int64, currency string, txType models.TransactionType, reference string) (string, error)
	GetTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.WalletTransaction, error)
}

// AuthService authenticates back-office operators
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}
