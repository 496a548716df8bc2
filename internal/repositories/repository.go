package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors shared by all repository implementations. The mongodb
// package translates driver errors into these so services never depend on a
// specific store.
var (
	ErrNotFound           = errors.New("record not found")
	ErrStatusConflict     = errors.New("pool status conflict")
	ErrPoolNotActive      = errors.New("pool is not active")
	ErrDuplicateReference = errors.New("duplicate transaction reference")
)

// PoolRepository defines the interface for jackpot pool data operations.
// TransitionStatus and ReserveTickets are the concurrency primitives: both are
// atomic conditional updates, never read-then-write.
type PoolRepository interface {
	Create(ctx context.Context, pool *models.JackpotPool) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.JackpotPool, error)
	FindAll(ctx context.Context) ([]*models.JackpotPool, error)
	FindByStatus(ctx context.Context, status models.PoolStatus) ([]*models.JackpotPool, error)
	UpdateTiers(ctx context.Context, id primitive.ObjectID, tiers []models.PrizeTier) error

	// TransitionStatus performs a compare-and-swap on the pool status and
	// returns the updated pool. Returns ErrStatusConflict if the pool is not
	// currently in the expected state.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.PoolStatus) (*models.JackpotPool, error)

	// ReserveTickets atomically increments the per-cycle ticket counter by
	// count, but only while the pool is ACTIVE, and returns the pool as it was
	// after the increment (its TicketCounter is the last reserved number and
	// its DrawNumber the cycle the range belongs to). Returns ErrPoolNotActive
	// when the pool is DRAWING or PAUSED.
	ReserveTickets(ctx context.Context, id primitive.ObjectID, count int64) (*models.JackpotPool, error)

	// AddContribution accrues a wager contribution into the pool amount.
	// Allowed while ACTIVE or DRAWING.
	AddContribution(ctx context.Context, id primitive.ObjectID, amount int64) error

	// CompleteDraw commits the pool side of a draw in one update, guarded on
	// status DRAWING: amount drops by distributedAmount and rises by
	// seedAmount, the ticket counter resets, drawNumber increments and the
	// pool returns to ACTIVE with the next draw scheduled.
	CompleteDraw(ctx context.Context, id primitive.ObjectID, distributedAmount, seedAmount int64, nextDrawAt time.Time) error

	// FindDue returns ACTIVE pools whose NextDrawAt is at or before now.
	FindDue(ctx context.Context, now time.Time) ([]*models.JackpotPool, error)

	// FindStuckDrawing returns pools left in DRAWING since before cutoff.
	FindStuckDrawing(ctx context.Context, cutoff time.Time) ([]*models.JackpotPool, error)
}

// TicketRepository defines the interface for the append-only ticket ledger
type TicketRepository interface {
	CreateMany(ctx context.Context, tickets []*models.JackpotTicket) error
	CountEligible(ctx context.Context, poolID primitive.ObjectID, drawNumber int64) (int64, error)
	CountEligibleByUser(ctx context.Context, poolID primitive.ObjectID, drawNumber int64, userID primitive.ObjectID) (int64, error)
	FindByNumber(ctx context.Context, poolID primitive.ObjectID, drawNumber, ticketNumber int64) (*models.JackpotTicket, error)
	// CountsByUser aggregates eligible ticket counts per user for one cycle,
	// used by the reconciliation job.
	CountsByUser(ctx context.Context, poolID primitive.ObjectID, drawNumber int64) (map[primitive.ObjectID]int64, error)
	FindByUser(ctx context.Context, poolID, userID primitive.ObjectID, page, limit int) ([]*models.JackpotTicket, error)
}

// PendingTicketRepository queues wagers that arrive while a pool is DRAWING
type PendingTicketRepository interface {
	Enqueue(ctx context.Context, pending *models.PendingTicket) error
	// Drain returns and removes all queued entries for a pool.
	Drain(ctx context.Context, poolID primitive.ObjectID) ([]*models.PendingTicket, error)
}

// TicketCountRepository maintains the derived per-(pool, user, cycle) aggregate
type TicketCountRepository interface {
	Increment(ctx context.Context, poolID, userID primitive.ObjectID, drawNumber, delta int64, at time.Time) error
	Find(ctx context.Context, poolID, userID primitive.ObjectID, drawNumber int64) (*models.PlayerTicketCount, error)
	Set(ctx context.Context, poolID, userID primitive.ObjectID, drawNumber, total int64) error
	FindByPoolCycle(ctx context.Context, poolID primitive.ObjectID, drawNumber int64) ([]*models.PlayerTicketCount, error)
}

// DrawRepository defines the interface for draw records
type DrawRepository interface {
	Create(ctx context.Context, draw *models.JackpotDraw) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.JackpotDraw, error)
	FindByPool(ctx context.Context, poolID primitive.ObjectID, page, limit int) ([]*models.JackpotDraw, error)
	FindLatestByPool(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotDraw, error)
	// Delete removes a draw record, the compensation path for a draw whose
	// pool commit failed.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WinnerRepository defines the interface for winner records
type WinnerRepository interface {
	CreateMany(ctx context.Context, winners []*models.JackpotWinner) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.JackpotWinner, error)
	FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.JackpotWinner, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.JackpotWinner, error)
	// ClaimCredit flips PrizeCredited false -> true and stores the transaction
	// id in one conditional update. Returns false when the winner was already
	// credited (by this or a concurrent caller).
	ClaimCredit(ctx context.Context, id primitive.ObjectID, transactionID string) (bool, error)
	MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// DeleteByDrawID removes the winners of a draw, the compensation path for
	// a draw whose pool commit failed.
	DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error
}

// WalletRepository is the balance ledger collaborator
type WalletRepository interface {
	// CreateIfAbsent inserts the transaction unless one with the same
	// Reference exists; it returns the stored transaction either way, with
	// created=false on the idempotent hit.
	CreateIfAbsent(ctx context.Context, tx *models.WalletTransaction) (stored *models.WalletTransaction, created bool, err error)
	FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.WalletTransaction, error)
}

// UserRepository defines the interface for player accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	IncrementBalance(ctx context.Context, id primitive.ObjectID, delta int64) error
}

// BlacklistRepository excludes users from winner selection
type BlacklistRepository interface {
	IsBlacklisted(ctx context.Context, userID primitive.ObjectID) (bool, error)
	Add(ctx context.Context, entry *models.BlacklistEntry) error
	Remove(ctx context.Context, userID primitive.ObjectID) error
	FindAll(ctx context.Context) ([]*models.BlacklistEntry, error)
}

// AdminUserRepository defines the interface for back-office accounts
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
