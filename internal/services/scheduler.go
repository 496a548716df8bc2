package services

import (
	"context"
	"errors"
	"time"

	"github.com/goldspin/casino-backend/internal/repositories"
	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

// Scheduler drives the draw lifecycle: it fires due draws, flushes deferred
// tickets, fans out crediting, runs the stuck-draw watchdog and the aggregate
// reconciliation job.
type Scheduler struct {
	poolRepo      repositories.PoolRepository
	drawService   DrawService
	ticketService TicketService
	prizeService  PrizeService
	cron          *cron.Cron
}

// NewScheduler creates a new Scheduler
func NewScheduler(
	poolRepo repositories.PoolRepository,
	drawService DrawService,
	ticketService TicketService,
	prizeService PrizeService,
) *Scheduler {
	return &Scheduler{
		poolRepo:      poolRepo,
		drawService:   drawService,
		ticketService: ticketService,
		prizeService:  prizeService,
		cron:          cron.New(),
	}
}

// Start registers the cron entries and starts the scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.runDueDraws); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/5 * * * *", s.runWatchdog); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.runReconciliation); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Jackpot scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Jackpot scheduler stopped")
}

// runDueDraws executes a draw for every ACTIVE pool whose NextDrawAt has
// passed, then flushes deferred tickets and credits the winners. The status
// CAS inside ExecuteDraw makes this safe to run on multiple instances.
func (s *Scheduler) runDueDraws() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	due, err := s.poolRepo.FindDue(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to list due pools", "error", err)
		return
	}

	for _, pool := range due {
		draw, err := s.drawService.ExecuteDraw(ctx, pool.ID)
		if err != nil {
			switch {
			case errors.Is(err, ErrAlreadyDrawing):
				// Another instance holds the draw.
			case errors.Is(err, ErrNoEligibleTickets):
				slog.Info("Deferring draw, no eligible tickets", "poolId", pool.ID.Hex())
			default:
				slog.Error("Scheduled draw failed", "error", err, "poolId", pool.ID.Hex())
			}
			continue
		}

		if err := s.ticketService.FlushPending(ctx, pool.ID); err != nil {
			slog.Error("Failed to flush pending tickets after draw", "error", err, "poolId", pool.ID.Hex())
		}
		if err := s.prizeService.CreditDrawWinners(ctx, draw.ID); err != nil {
			slog.Error("Failed to credit draw winners", "error", err, "drawId", draw.ID.Hex())
		}
	}
}

// runWatchdog recovers pools stuck in DRAWING
func (s *Scheduler) runWatchdog() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	recovered, err := s.drawService.RecoverStuckDraws(ctx)
	if err != nil {
		slog.Error("Stuck draw watchdog failed", "error", err)
		return
	}
	if recovered > 0 {
		slog.Warn("Watchdog recovered stuck pools", "count", recovered)
	}
}

// runReconciliation recomputes ticket aggregates from the ledger
func (s *Scheduler) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pools, err := s.poolRepo.FindAll(ctx)
	if err != nil {
		slog.Error("Failed to list pools for reconciliation", "error", err)
		return
	}
	for _, pool := range pools {
		if err := s.ticketService.Reconcile(ctx, pool.ID); err != nil {
			slog.Error("Ticket aggregate reconciliation failed", "error", err, "poolId", pool.ID.Hex())
		}
	}
}
