package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"github.com/goldspin/casino-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PoolServiceImpl implements PoolService
var _ PoolService = (*PoolServiceImpl)(nil)

// PoolServiceImpl manages pool configuration and the operator state machine
type PoolServiceImpl struct {
	poolRepo repositories.PoolRepository
}

// NewPoolService creates a new PoolServiceImpl
func NewPoolService(poolRepo repositories.PoolRepository) *PoolServiceImpl {
	return &PoolServiceImpl{poolRepo: poolRepo}
}

// CreatePool validates and persists a new pool. New pools start ACTIVE at
// their seed amount, cycle 1, with the first draw scheduled by pool type.
func (s *PoolServiceImpl) CreatePool(ctx context.Context, pool *models.JackpotPool) (*models.JackpotPool, error) {
	if pool.Name == "" {
		return nil, fmt.Errorf("pool name is required")
	}
	switch pool.PoolType {
	case models.PoolTypeDaily, models.PoolTypeWeekly, models.PoolTypeMonthly:
	default:
		return nil, fmt.Errorf("unknown pool type %q", pool.PoolType)
	}
	if pool.TicketCost <= 0 {
		return nil, fmt.Errorf("ticket cost must be positive")
	}
	if pool.ContributionRateBps <= 0 || pool.ContributionRateBps > 10000 {
		return nil, fmt.Errorf("contribution rate must be between 1 and 10000 basis points")
	}
	if pool.SeedAmount < 0 {
		return nil, fmt.Errorf("seed amount must not be negative")
	}
	if err := validateTiers(pool.Tiers); err != nil {
		return nil, err
	}

	pool.Status = models.PoolStatusActive
	pool.CurrentAmount = pool.SeedAmount
	pool.DrawNumber = 1
	pool.TicketCounter = 0
	if pool.NextDrawAt.IsZero() {
		pool.NextDrawAt = utils.NextDrawTime(pool.PoolType, time.Now())
	}

	if err := s.poolRepo.Create(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	slog.Info("Pool created", "poolId", pool.ID.Hex(), "name", pool.Name,
		"poolType", pool.PoolType, "seedAmount", pool.SeedAmount)
	return pool, nil
}

// GetPool returns a pool by id
func (s *PoolServiceImpl) GetPool(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotPool, error) {
	pool, err := s.poolRepo.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pool: %w", err)
	}
	return pool, nil
}

// GetPools returns pools, optionally filtered by status
func (s *PoolServiceImpl) GetPools(ctx context.Context, status models.PoolStatus) ([]*models.JackpotPool, error) {
	if status == "" {
		return s.poolRepo.FindAll(ctx)
	}
	switch status {
	case models.PoolStatusActive, models.PoolStatusDrawing, models.PoolStatusPaused:
	default:
		return nil, fmt.Errorf("unknown pool status %q", status)
	}
	return s.poolRepo.FindByStatus(ctx, status)
}

// GetPoolStatus returns the public read model for a pool
func (s *PoolServiceImpl) GetPoolStatus(ctx context.Context, poolID primitive.ObjectID) (*models.PoolStatusResponse, error) {
	pool, err := s.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	nextIn := int64(time.Until(pool.NextDrawAt).Seconds())
	if nextIn < 0 {
		nextIn = 0
	}
	return &models.PoolStatusResponse{
		PoolID:        pool.ID,
		Name:          pool.Name,
		PoolType:      pool.PoolType,
		Currency:      pool.Currency,
		CurrentAmount: pool.CurrentAmount,
		Status:        pool.Status,
		DrawNumber:    pool.DrawNumber,
		NextDrawAt:    pool.NextDrawAt,
		NextDrawIn:    nextIn,
		Tiers:         pool.Tiers,
	}, nil
}

// UpdateTiers replaces the prize structure. Takes effect from the next draw;
// a draw already in flight keeps the structure it snapshotted.
func (s *PoolServiceImpl) UpdateTiers(ctx context.Context, poolID primitive.ObjectID, tiers []models.PrizeTier) error {
	if err := validateTiers(tiers); err != nil {
		return err
	}
	if err := s.poolRepo.UpdateTiers(ctx, poolID, tiers); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update tiers: %w", err)
	}
	slog.Info("Pool tiers updated", "poolId", poolID.Hex(), "tiers", len(tiers))
	return nil
}

// PausePool stops contribution accrual and ticket issuance. Only an ACTIVE
// pool can be paused; a pool mid-draw must finish first.
func (s *PoolServiceImpl) PausePool(ctx context.Context, poolID primitive.ObjectID) error {
	if _, err := s.poolRepo.TransitionStatus(ctx, poolID, models.PoolStatusActive, models.PoolStatusPaused); err != nil {
		return s.translateTransitionErr(ctx, poolID, err)
	}
	slog.Info("Pool paused", "poolId", poolID.Hex())
	return nil
}

// ResumePool returns a PAUSED pool to ACTIVE
func (s *PoolServiceImpl) ResumePool(ctx context.Context, poolID primitive.ObjectID) error {
	if _, err := s.poolRepo.TransitionStatus(ctx, poolID, models.PoolStatusPaused, models.PoolStatusActive); err != nil {
		return s.translateTransitionErr(ctx, poolID, err)
	}
	slog.Info("Pool resumed", "poolId", poolID.Hex())
	return nil
}

func (s *PoolServiceImpl) translateTransitionErr(ctx context.Context, poolID primitive.ObjectID, err error) error {
	if !errors.Is(err, repositories.ErrStatusConflict) {
		return fmt.Errorf("failed to transition pool status: %w", err)
	}
	current, findErr := s.poolRepo.FindByID(ctx, poolID)
	if findErr != nil {
		if errors.Is(findErr, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to inspect pool after status conflict: %w", findErr)
	}
	if current.Status == models.PoolStatusDrawing {
		return ErrAlreadyDrawing
	}
	return fmt.Errorf("pool is already %s", current.Status)
}

// validateTiers checks names, orders and that the pool shares sum to at most
// 100% so the draw can never pay out more than the pool holds.
func validateTiers(tiers []models.PrizeTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidTiers)
	}

	var totalBps int64
	names := make(map[string]bool, len(tiers))
	orders := make(map[int]bool, len(tiers))
	for _, t := range tiers {
		if t.Name == "" {
			return fmt.Errorf("%w: tier name is required", ErrInvalidTiers)
		}
		if names[t.Name] {
			return fmt.Errorf("%w: duplicate tier name %q", ErrInvalidTiers, t.Name)
		}
		if orders[t.TierOrder] {
			return fmt.Errorf("%w: duplicate tier order %d", ErrInvalidTiers, t.TierOrder)
		}
		if t.WinnerCount <= 0 {
			return fmt.Errorf("%w: tier %q winner count must be positive", ErrInvalidTiers, t.Name)
		}
		if t.PoolShareBps <= 0 {
			return fmt.Errorf("%w: tier %q pool share must be positive", ErrInvalidTiers, t.Name)
		}
		names[t.Name] = true
		orders[t.TierOrder] = true
		totalBps += t.PoolShareBps
	}
	if totalBps > 10000 {
		return fmt.Errorf("%w: tier shares sum to %d basis points, maximum is 10000", ErrInvalidTiers, totalBps)
	}
	return nil
}
