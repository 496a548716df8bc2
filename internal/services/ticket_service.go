package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TicketServiceImpl implements TicketService
var _ TicketService = (*TicketServiceImpl)(nil)

// TicketServiceImpl maintains the ticket ledger and the player ticket aggregate
type TicketServiceImpl struct {
	poolRepo    repositories.PoolRepository
	ticketRepo  repositories.TicketRepository
	pendingRepo repositories.PendingTicketRepository
	countRepo   repositories.TicketCountRepository
}

// NewTicketService creates a new TicketServiceImpl
func NewTicketService(
	poolRepo repositories.PoolRepository,
	ticketRepo repositories.TicketRepository,
	pendingRepo repositories.PendingTicketRepository,
	countRepo repositories.TicketCountRepository,
) *TicketServiceImpl {
	return &TicketServiceImpl{
		poolRepo:    poolRepo,
		ticketRepo:  ticketRepo,
		pendingRepo: pendingRepo,
		countRepo:   countRepo,
	}
}

// ProcessWager routes a settled wager into every pool that is currently
// accepting activity. Contribution accrues in ACTIVE and DRAWING; ticket
// issuance while DRAWING is deferred to the next cycle.
func (s *TicketServiceImpl) ProcessWager(ctx context.Context, userID primitive.ObjectID, wagerAmount int64, sourceTransactionID string) error {
	if wagerAmount <= 0 {
		return fmt.Errorf("wager amount must be positive")
	}

	pools, err := s.poolRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pools: %w", err)
	}

	for _, pool := range pools {
		if pool.Status == models.PoolStatusPaused {
			continue
		}

		contribution := wagerAmount * pool.ContributionRateBps / 10000
		if contribution > 0 {
			if err := s.poolRepo.AddContribution(ctx, pool.ID, contribution); err != nil {
				// The pool may have been paused since listing; skip, don't fail the wager.
				if errors.Is(err, repositories.ErrPoolNotActive) {
					continue
				}
				return fmt.Errorf("failed to add contribution to pool %s: %w", pool.ID.Hex(), err)
			}
		}

		if _, err := s.IssueTickets(ctx, pool.ID, userID, wagerAmount, sourceTransactionID); err != nil {
			return err
		}
	}
	return nil
}

// IssueTickets issues wagerAmount / ticketCost tickets (floored, remainder
// dropped) with dense, strictly increasing per-cycle ticket numbers. The
// number range is reserved by an atomic counter increment guarded on pool
// status, so concurrent issuers never collide and a draw never starts in the
// middle of an assignment.
func (s *TicketServiceImpl) IssueTickets(ctx context.Context, poolID, userID primitive.ObjectID, wagerAmount int64, sourceTransactionID string) ([]*models.JackpotTicket, error) {
	pool, err := s.poolRepo.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pool: %w", err)
	}
	if pool.TicketCost <= 0 {
		return nil, fmt.Errorf("pool %s has no ticket cost configured", poolID.Hex())
	}

	count := wagerAmount / pool.TicketCost
	if count == 0 {
		return []*models.JackpotTicket{}, nil
	}

	reserved, err := s.poolRepo.ReserveTickets(ctx, poolID, count)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotActive) {
			// Draw in progress or pool paused: queue the wager so the draw's
			// snapshot stays stable. Paused pools drop the queue on resume via
			// the same flush path.
			pending := &models.PendingTicket{
				PoolID:              poolID,
				UserID:              userID,
				WagerAmount:         wagerAmount,
				SourceTransactionID: sourceTransactionID,
				QueuedAt:            time.Now(),
			}
			if qErr := s.pendingRepo.Enqueue(ctx, pending); qErr != nil {
				return nil, fmt.Errorf("failed to queue deferred tickets: %w", qErr)
			}
			slog.Info("Ticket issuance deferred, pool not active",
				"poolId", poolID.Hex(), "userId", userID.Hex(), "wagerAmount", wagerAmount)
			return []*models.JackpotTicket{}, nil
		}
		return nil, fmt.Errorf("failed to reserve ticket numbers: %w", err)
	}

	// reserved.TicketCounter is the last number in our range; the range is
	// contiguous and exclusive to this call.
	firstNumber := reserved.TicketCounter - count + 1
	now := time.Now()
	tickets := make([]*models.JackpotTicket, 0, count)
	for i := int64(0); i < count; i++ {
		tickets = append(tickets, &models.JackpotTicket{
			PoolID:              poolID,
			UserID:              userID,
			DrawNumber:          reserved.DrawNumber,
			TicketNumber:        firstNumber + i,
			WagerAmount:         pool.TicketCost,
			SourceTransactionID: sourceTransactionID,
			DrawEligible:        true,
			EarnedAt:            now,
		})
	}

	if err := s.ticketRepo.CreateMany(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to write tickets to ledger: %w", err)
	}

	if err := s.countRepo.Increment(ctx, poolID, userID, reserved.DrawNumber, count, now); err != nil {
		// The aggregate is display-only and reconciliation corrects drift, so
		// a failed increment must not fail issuance.
		slog.Error("Failed to increment ticket aggregate", "error", err,
			"poolId", poolID.Hex(), "userId", userID.Hex())
	}

	slog.Info("Tickets issued", "poolId", poolID.Hex(), "userId", userID.Hex(),
		"count", count, "firstNumber", firstNumber, "drawNumber", reserved.DrawNumber)
	return tickets, nil
}

// FlushPending replays queued wagers into the now-active cycle. Called right
// after a draw commits.
func (s *TicketServiceImpl) FlushPending(ctx context.Context, poolID primitive.ObjectID) error {
	pending, err := s.pendingRepo.Drain(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to drain pending tickets: %w", err)
	}
	for _, p := range pending {
		if _, err := s.IssueTickets(ctx, p.PoolID, p.UserID, p.WagerAmount, p.SourceTransactionID); err != nil {
			slog.Error("Failed to issue deferred tickets", "error", err,
				"poolId", p.PoolID.Hex(), "userId", p.UserID.Hex())
			// Re-queue so the wager is not lost.
			if qErr := s.pendingRepo.Enqueue(ctx, p); qErr != nil {
				slog.Error("Failed to re-queue deferred tickets", "error", qErr, "poolId", p.PoolID.Hex())
			}
		}
	}
	if len(pending) > 0 {
		slog.Info("Flushed pending tickets", "poolId", poolID.Hex(), "entries", len(pending))
	}
	return nil
}

// GetTicketCount returns the player's aggregate for the current cycle.
// Display-only; the draw engine counts the ledger directly.
func (s *TicketServiceImpl) GetTicketCount(ctx context.Context, poolID, userID primitive.ObjectID) (int64, error) {
	pool, err := s.poolRepo.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	count, err := s.countRepo.Find(ctx, poolID, userID, pool.DrawNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return count.TotalTickets, nil
}

// GetTickets returns a player's tickets in a pool, newest first
func (s *TicketServiceImpl) GetTickets(ctx context.Context, poolID, userID primitive.ObjectID, page, limit int) ([]*models.JackpotTicket, error) {
	return s.ticketRepo.FindByUser(ctx, poolID, userID, page, limit)
}

// GetOdds returns the player's tickets held, the cycle's total and the
// resulting win percentage.
func (s *TicketServiceImpl) GetOdds(ctx context.Context, poolID, userID primitive.ObjectID) (*models.TicketOddsResponse, error) {
	pool, err := s.poolRepo.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	held, err := s.GetTicketCount(ctx, poolID, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.ticketRepo.CountEligible(ctx, poolID, pool.DrawNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to count eligible tickets: %w", err)
	}

	odds := 0.0
	if total > 0 {
		odds = float64(held) / float64(total) * 100
	}
	return &models.TicketOddsResponse{
		PoolID:         poolID,
		DrawNumber:     pool.DrawNumber,
		TicketsHeld:    held,
		TotalTickets:   total,
		OddsPercentage: odds,
	}, nil
}

// Reconcile recomputes every aggregate of the current cycle from the ledger.
// Drift is corrected and logged, never treated as an error.
func (s *TicketServiceImpl) Reconcile(ctx context.Context, poolID primitive.ObjectID) error {
	pool, err := s.poolRepo.FindByID(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to find pool: %w", err)
	}

	actual, err := s.ticketRepo.CountsByUser(ctx, poolID, pool.DrawNumber)
	if err != nil {
		return fmt.Errorf("failed to aggregate ledger counts: %w", err)
	}
	stored, err := s.countRepo.FindByPoolCycle(ctx, poolID, pool.DrawNumber)
	if err != nil {
		return fmt.Errorf("failed to list stored counts: %w", err)
	}

	corrected := 0
	seen := make(map[primitive.ObjectID]bool, len(stored))
	for _, c := range stored {
		seen[c.UserID] = true
		if want := actual[c.UserID]; c.TotalTickets != want {
			if err := s.countRepo.Set(ctx, poolID, c.UserID, pool.DrawNumber, want); err != nil {
				return fmt.Errorf("failed to correct aggregate: %w", err)
			}
			slog.Warn("Corrected ticket aggregate drift", "poolId", poolID.Hex(),
				"userId", c.UserID.Hex(), "stored", c.TotalTickets, "actual", want)
			corrected++
		}
	}
	for userID, want := range actual {
		if seen[userID] {
			continue
		}
		if err := s.countRepo.Set(ctx, poolID, userID, pool.DrawNumber, want); err != nil {
			return fmt.Errorf("failed to backfill aggregate: %w", err)
		}
		corrected++
	}

	if corrected > 0 {
		slog.Info("Ticket aggregate reconciliation complete", "poolId", poolID.Hex(), "corrected", corrected)
	}
	return nil
}
