package services

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"github.com/goldspin/casino-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl executes jackpot draws: snapshot, seeded winner selection,
// atomic pool reset.
type DrawServiceImpl struct {
	poolRepo      repositories.PoolRepository
	ticketRepo    repositories.TicketRepository
	drawRepo      repositories.DrawRepository
	winnerRepo    repositories.WinnerRepository
	blacklistRepo repositories.BlacklistRepository
	drawGrace     time.Duration // how long a pool may sit in DRAWING before the watchdog reverts it
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	poolRepo repositories.PoolRepository,
	ticketRepo repositories.TicketRepository,
	drawRepo repositories.DrawRepository,
	winnerRepo repositories.WinnerRepository,
	blacklistRepo repositories.BlacklistRepository,
	drawGrace time.Duration,
) *DrawServiceImpl {
	if drawGrace <= 0 {
		drawGrace = 10 * time.Minute
	}
	return &DrawServiceImpl{
		poolRepo:      poolRepo,
		ticketRepo:    ticketRepo,
		drawRepo:      drawRepo,
		winnerRepo:    winnerRepo,
		blacklistRepo: blacklistRepo,
		drawGrace:     drawGrace,
	}
}

// ExecuteDraw runs one draw for a pool.
//
// The ACTIVE -> DRAWING transition is a compare-and-swap and the only
// mutual-exclusion primitive: of two concurrent triggers exactly one wins the
// swap, the other gets ErrAlreadyDrawing. Any failure after the swap reverts
// the pool to ACTIVE before returning, so the pool never stays wedged; the
// watchdog covers a crash between the two.
func (s *DrawServiceImpl) ExecuteDraw(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotDraw, error) {
	pool, err := s.poolRepo.TransitionStatus(ctx, poolID, models.PoolStatusActive, models.PoolStatusDrawing)
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			current, findErr := s.poolRepo.FindByID(ctx, poolID)
			if findErr != nil {
				if errors.Is(findErr, repositories.ErrNotFound) {
					return nil, ErrNotFound
				}
				return nil, fmt.Errorf("failed to inspect pool after status conflict: %w", findErr)
			}
			if current.Status == models.PoolStatusDrawing {
				slog.Warn("Draw rejected, pool already drawing", "poolId", poolID.Hex())
				return nil, ErrAlreadyDrawing
			}
			return nil, ErrPoolNotActive
		}
		return nil, fmt.Errorf("failed to start draw: %w", err)
	}

	draw, err := s.runDraw(ctx, pool)
	if err != nil {
		s.revertToActive(ctx, poolID)
		return nil, err
	}
	return draw, nil
}

// runDraw does the work between the two status transitions. The pool passed
// in is the post-CAS snapshot: its CurrentAmount and DrawNumber are fixed for
// this draw.
func (s *DrawServiceImpl) runDraw(ctx context.Context, pool *models.JackpotPool) (*models.JackpotDraw, error) {
	eligibleTickets, err := s.ticketRepo.CountEligible(ctx, pool.ID, pool.DrawNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot ticket population: %w", err)
	}
	if eligibleTickets == 0 {
		slog.Info("Draw skipped, no eligible tickets", "poolId", pool.ID.Hex(), "drawNumber", pool.DrawNumber)
		return nil, ErrNoEligibleTickets
	}

	// The ticket counter bounds the number space, not the eligible count. A
	// reserved range whose insert failed leaves holes below the counter, and
	// sampling up to the counter keeps every issued number drawable; drawOne
	// consumes numbers that resolve to nothing.
	sampleSpace := pool.TicketCounter
	if sampleSpace < eligibleTickets {
		sampleSpace = eligibleTickets
	}

	totalPoolAmount := pool.CurrentAmount
	seed, err := newDrawSeed()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draw seed: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))

	winners, err := s.selectWinners(ctx, pool, rng, sampleSpace, eligibleTickets, totalPoolAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to select winners: %w", err)
	}

	draw := &models.JackpotDraw{
		ID:              primitive.NewObjectID(),
		PoolID:          pool.ID,
		DrawNumber:      pool.DrawNumber,
		TotalPoolAmount: totalPoolAmount,
		TotalTickets:    eligibleTickets,
		TotalWinners:    len(winners),
		RandomSeed:      seed,
		DrawnAt:         time.Now(),
	}
	// Only what winners actually receive leaves the pool; flooring remainders
	// and unfilled tier slots roll forward.
	var distributed int64
	for _, w := range winners {
		w.DrawID = draw.ID
		distributed += w.PrizeAmount
	}

	// The draw is not committed until CompleteDraw succeeds. Winner and draw
	// rows written before a failed commit are discarded, otherwise the retried
	// draw would double the cycle's creditable payout.
	if err := s.winnerRepo.CreateMany(ctx, winners); err != nil {
		s.discardDraw(ctx, draw.ID)
		return nil, fmt.Errorf("failed to persist winners: %w", err)
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		s.discardDraw(ctx, draw.ID)
		return nil, fmt.Errorf("failed to persist draw: %w", err)
	}

	nextDrawAt := utils.NextDrawTime(pool.PoolType, draw.DrawnAt)
	if err := s.poolRepo.CompleteDraw(ctx, pool.ID, distributed, pool.SeedAmount, nextDrawAt); err != nil {
		s.discardDraw(ctx, draw.ID)
		return nil, fmt.Errorf("failed to commit pool reset: %w", err)
	}

	slog.Info("Draw executed", "poolId", pool.ID.Hex(), "drawId", draw.ID.Hex(),
		"drawNumber", draw.DrawNumber, "totalTickets", eligibleTickets,
		"totalWinners", len(winners), "distributed", distributed, "seed", seed)
	return draw, nil
}

// discardDraw removes the draw record and its winners after a failed commit.
// The draw record goes first so crediting, which fans out from the draw, can
// never find a winner row from a discarded attempt.
func (s *DrawServiceImpl) discardDraw(ctx context.Context, drawID primitive.ObjectID) {
	if err := s.drawRepo.Delete(ctx, drawID); err != nil {
		slog.Error("CRITICAL: failed to discard draw record after failed commit",
			"error", err, "drawId", drawID.Hex())
	}
	if err := s.winnerRepo.DeleteByDrawID(ctx, drawID); err != nil {
		slog.Error("CRITICAL: failed to discard winner records after failed commit",
			"error", err, "drawId", drawID.Hex())
	}
}

// selectWinners draws winner_count distinct ticket numbers per tier, without
// replacement across the whole draw. A user wins at most once per draw;
// numbers resolving to an already-selected or blacklisted user are consumed
// and redrawn. Prize arithmetic is integer minor units with remainders
// dropped, so the payout sum can never exceed the pool amount.
func (s *DrawServiceImpl) selectWinners(ctx context.Context, pool *models.JackpotPool, rng *rand.Rand, sampleSpace, eligibleTickets, totalPoolAmount int64) ([]*models.JackpotWinner, error) {
	tiers := append([]models.PrizeTier(nil), pool.Tiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].TierOrder < tiers[j].TierOrder })

	chosenNumbers := make(map[int64]bool)
	chosenUsers := make(map[primitive.ObjectID]bool)
	heldCache := make(map[primitive.ObjectID]int64)

	var winners []*models.JackpotWinner
	for _, tier := range tiers {
		if tier.WinnerCount <= 0 || tier.PoolShareBps <= 0 {
			continue
		}
		prize := totalPoolAmount * tier.PoolShareBps / 10000 / int64(tier.WinnerCount)
		if prize <= 0 {
			slog.Warn("Tier prize rounds to zero, skipping tier",
				"poolId", pool.ID.Hex(), "tier", tier.Name)
			continue
		}

		for i := 0; i < tier.WinnerCount; i++ {
			winner, ok, err := s.drawOne(ctx, pool, rng, sampleSpace, eligibleTickets, chosenNumbers, chosenUsers, heldCache)
			if err != nil {
				return nil, err
			}
			if !ok {
				// Eligible population exhausted; the unawarded share stays in
				// the pool via the rounding rule.
				slog.Warn("Ticket population exhausted before tier filled",
					"poolId", pool.ID.Hex(), "tier", tier.Name, "selected", i, "wanted", tier.WinnerCount)
				return winners, nil
			}
			winner.PoolID = pool.ID
			winner.TierName = tier.Name
			winner.TierOrder = tier.TierOrder
			winner.PrizeAmount = prize
			winner.Currency = pool.Currency
			winners = append(winners, winner)
		}
	}
	return winners, nil
}

// drawOne picks the next valid winning ticket. Every rejected number is marked
// consumed, so the loop strictly shrinks the candidate space and terminates.
func (s *DrawServiceImpl) drawOne(ctx context.Context, pool *models.JackpotPool, rng *rand.Rand, sampleSpace, eligibleTickets int64, chosenNumbers map[int64]bool, chosenUsers map[primitive.ObjectID]bool, heldCache map[primitive.ObjectID]int64) (*models.JackpotWinner, bool, error) {
	for int64(len(chosenNumbers)) < sampleSpace {
		n := rng.Int63n(sampleSpace) + 1
		if chosenNumbers[n] {
			continue
		}

		ticket, err := s.ticketRepo.FindByNumber(ctx, pool.ID, pool.DrawNumber, n)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// A hole in the number space: the range was reserved but its
				// insert failed. Consume it and redraw.
				chosenNumbers[n] = true
				continue
			}
			return nil, false, fmt.Errorf("failed to resolve ticket %d: %w", n, err)
		}
		if !ticket.DrawEligible || chosenUsers[ticket.UserID] {
			chosenNumbers[n] = true
			continue
		}

		blacklisted, err := s.blacklistRepo.IsBlacklisted(ctx, ticket.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check blacklist: %w", err)
		}
		if blacklisted {
			slog.Info("Skipping blacklisted winner", "poolId", pool.ID.Hex(), "userId", ticket.UserID.Hex())
			chosenNumbers[n] = true
			chosenUsers[ticket.UserID] = true
			continue
		}

		held, ok := heldCache[ticket.UserID]
		if !ok {
			held, err = s.ticketRepo.CountEligibleByUser(ctx, pool.ID, pool.DrawNumber, ticket.UserID)
			if err != nil {
				return nil, false, fmt.Errorf("failed to count tickets held: %w", err)
			}
			heldCache[ticket.UserID] = held
		}

		chosenNumbers[n] = true
		chosenUsers[ticket.UserID] = true
		return &models.JackpotWinner{
			UserID:              ticket.UserID,
			WinningTicketNumber: n,
			TicketsHeld:         held,
			TotalTicketsInPool:  eligibleTickets,
			WinOddsPercentage:   float64(held) / float64(eligibleTickets) * 100,
		}, true, nil
	}
	return nil, false, nil
}

// revertToActive is the compensating transition after a failed draw
func (s *DrawServiceImpl) revertToActive(ctx context.Context, poolID primitive.ObjectID) {
	if _, err := s.poolRepo.TransitionStatus(ctx, poolID, models.PoolStatusDrawing, models.PoolStatusActive); err != nil {
		slog.Error("CRITICAL: failed to revert pool after failed draw, watchdog will retry",
			"error", err, "poolId", poolID.Hex())
	}
}

// GetDraw returns a draw with its winners
func (s *DrawServiceImpl) GetDraw(ctx context.Context, drawID primitive.ObjectID) (*models.DrawWithWinners, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find draw: %w", err)
	}
	winners, err := s.winnerRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to find winners: %w", err)
	}
	return &models.DrawWithWinners{Draw: draw, Winners: winners}, nil
}

// GetLatestDraw returns a pool's most recent draw with its winners
func (s *DrawServiceImpl) GetLatestDraw(ctx context.Context, poolID primitive.ObjectID) (*models.DrawWithWinners, error) {
	draw, err := s.drawRepo.FindLatestByPool(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest draw: %w", err)
	}
	winners, err := s.winnerRepo.FindByDrawID(ctx, draw.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find winners: %w", err)
	}
	return &models.DrawWithWinners{Draw: draw, Winners: winners}, nil
}

// GetDrawHistory returns a pool's draws, newest first
func (s *DrawServiceImpl) GetDrawHistory(ctx context.Context, poolID primitive.ObjectID, page, limit int) ([]*models.JackpotDraw, error) {
	return s.drawRepo.FindByPool(ctx, poolID, page, limit)
}

// GetWinnersByDraw returns the winners of a draw ordered by tier
func (s *DrawServiceImpl) GetWinnersByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.JackpotWinner, error) {
	return s.winnerRepo.FindByDrawID(ctx, drawID)
}

// GetWinnersByUser returns a player's wins across all draws, newest first
func (s *DrawServiceImpl) GetWinnersByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.JackpotWinner, error) {
	return s.winnerRepo.FindByUserID(ctx, userID, page, limit)
}

// RecoverStuckDraws reverts pools left in DRAWING beyond the grace period.
// Run periodically by the scheduler; this is what makes a crashed draw a
// delay rather than an outage.
func (s *DrawServiceImpl) RecoverStuckDraws(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.drawGrace)
	stuck, err := s.poolRepo.FindStuckDrawing(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to scan for stuck draws: %w", err)
	}

	recovered := 0
	for _, pool := range stuck {
		if _, err := s.poolRepo.TransitionStatus(ctx, pool.ID, models.PoolStatusDrawing, models.PoolStatusActive); err != nil {
			if errors.Is(err, repositories.ErrStatusConflict) {
				continue // state moved on since the scan
			}
			slog.Error("Failed to recover stuck pool", "error", err, "poolId", pool.ID.Hex())
			continue
		}
		slog.Warn("Recovered pool stuck in DRAWING", "poolId", pool.ID.Hex(),
			"stuckSince", pool.DrawStartedAt)
		recovered++
	}
	return recovered, nil
}

// newDrawSeed derives the persisted draw seed from the OS entropy source
func newDrawSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, err
	}
	seed := int64(binary.BigEndian.Uint64(b[:]) &^ (1 << 63))
	return seed, nil
}
