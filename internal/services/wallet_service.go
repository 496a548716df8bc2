package services

import (
	"context"
	"fmt"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure WalletServiceImpl implements WalletService
var _ WalletService = (*WalletServiceImpl)(nil)

// WalletServiceImpl records balance ledger entries and keeps the cached
// user balance in step.
type WalletServiceImpl struct {
	walletRepo repositories.WalletRepository
	userRepo   repositories.UserRepository
}

// NewWalletService creates a new WalletServiceImpl
func NewWalletService(walletRepo repositories.WalletRepository, userRepo repositories.UserRepository) *WalletServiceImpl {
	return &WalletServiceImpl{walletRepo: walletRepo, userRepo: userRepo}
}

// Credit records a credit under the given reference. The ledger holds a
// unique index on reference, so a retried credit lands on the original
// transaction and the balance is only bumped on first insert.
func (s *WalletServiceImpl) Credit(ctx context.Context, userID primitive.ObjectID, amount int64, currency string, txType models.TransactionType, reference string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("credit amount must be positive")
	}
	if reference == "" {
		return "", fmt.Errorf("credit reference is required")
	}

	tx := &models.WalletTransaction{
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
		CreatedAt: time.Now(),
	}
	stored, created, err := s.walletRepo.CreateIfAbsent(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to record wallet transaction: %w", err)
	}
	if !created {
		slog.Info("Wallet credit replayed, returning original transaction",
			"userId", userID.Hex(), "reference", reference, "transactionId", stored.ID.Hex())
		return stored.ID.Hex(), nil
	}

	if err := s.userRepo.IncrementBalance(ctx, userID, amount); err != nil {
		// Ledger entry exists; the cached balance will be behind until the
		// next reconciliation. Surface loudly but do not fail the credit.
		slog.Error("CRITICAL: ledger written but balance increment failed",
			"error", err, "userId", userID.Hex(), "transactionId", stored.ID.Hex())
	}

	slog.Info("Wallet credited", "userId", userID.Hex(), "amount", amount,
		"currency", currency, "type", txType, "transactionId", stored.ID.Hex())
	return stored.ID.Hex(), nil
}

// GetTransactions returns a user's ledger entries, newest first
func (s *WalletServiceImpl) GetTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.WalletTransaction, error) {
	return s.walletRepo.FindByUser(ctx, userID, page, limit)
}
