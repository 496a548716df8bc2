package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"github.com/goldspin/casino-backend/pkg/smsgateway"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PrizeServiceImpl implements PrizeService
var _ PrizeService = (*PrizeServiceImpl)(nil)

// PrizeServiceImpl credits winner prizes to the balance ledger and sends the
// winner notification.
type PrizeServiceImpl struct {
	winnerRepo    repositories.WinnerRepository
	userRepo      repositories.UserRepository
	walletService WalletService
	smsGateway    smsgateway.Gateway
}

// NewPrizeService creates a new PrizeServiceImpl
func NewPrizeService(
	winnerRepo repositories.WinnerRepository,
	userRepo repositories.UserRepository,
	walletService WalletService,
	smsGateway smsgateway.Gateway,
) *PrizeServiceImpl {
	return &PrizeServiceImpl{
		winnerRepo:    winnerRepo,
		userRepo:      userRepo,
		walletService: walletService,
		smsGateway:    smsGateway,
	}
}

// CreditWinner pays one winner exactly once. The wallet reference is the
// winner id, so the ledger absorbs retries; the winner record's credited flag
// is then claimed with a conditional update. Replays on either side converge
// on the original transaction id.
func (s *PrizeServiceImpl) CreditWinner(ctx context.Context, winnerID primitive.ObjectID) (string, error) {
	winner, err := s.winnerRepo.FindByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to find winner: %w", err)
	}
	if winner.PrizeCredited {
		return winner.CreditedTransactionID, nil
	}

	reference := "jackpot-winner-" + winnerID.Hex()
	txID, err := s.walletService.Credit(ctx, winner.UserID, winner.PrizeAmount,
		winner.Currency, models.TransactionTypeJackpotPrize, reference)
	if err != nil {
		return "", fmt.Errorf("failed to credit prize: %w", err)
	}

	claimed, err := s.winnerRepo.ClaimCredit(ctx, winnerID, txID)
	if err != nil {
		return "", fmt.Errorf("failed to mark winner credited: %w", err)
	}
	if !claimed {
		// A concurrent caller got here first; both wallet credits hit the same
		// reference so only one transaction exists.
		current, findErr := s.winnerRepo.FindByID(ctx, winnerID)
		if findErr == nil && current.CreditedTransactionID != "" {
			return current.CreditedTransactionID, nil
		}
		return txID, nil
	}

	slog.Info("Winner credited", "winnerId", winnerID.Hex(), "userId", winner.UserID.Hex(),
		"tier", winner.TierName, "amount", winner.PrizeAmount, "transactionId", txID)

	s.notifyWinner(ctx, winner)
	return txID, nil
}

// CreditDrawWinners fans crediting out over every winner of a draw. A failed
// winner is logged and skipped; the next crediting pass picks it up because
// CreditWinner is idempotent.
func (s *PrizeServiceImpl) CreditDrawWinners(ctx context.Context, drawID primitive.ObjectID) error {
	winners, err := s.winnerRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		return fmt.Errorf("failed to find winners for draw: %w", err)
	}

	var failed int
	for _, w := range winners {
		if w.PrizeCredited {
			continue
		}
		if _, err := s.CreditWinner(ctx, w.ID); err != nil {
			slog.Error("Failed to credit winner", "error", err,
				"winnerId", w.ID.Hex(), "drawId", drawID.Hex())
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d winners failed to credit", failed, len(winners))
	}

	slog.Info("Draw winners credited", "drawId", drawID.Hex(), "winners", len(winners))
	return nil
}

// notifyWinner sends the winner SMS. Notification is best-effort: a gateway
// failure never rolls back a credit.
func (s *PrizeServiceImpl) notifyWinner(ctx context.Context, winner *models.JackpotWinner) {
	user, err := s.userRepo.FindByID(ctx, winner.UserID)
	if err != nil {
		slog.Error("Failed to load winner user for notification", "error", err,
			"winnerId", winner.ID.Hex())
		return
	}
	if user.Phone == "" {
		return
	}

	message := fmt.Sprintf("Congratulations! You won the %s prize of %s %.2f in the jackpot draw. Your winnings have been credited to your wallet.",
		winner.TierName, winner.Currency, float64(winner.PrizeAmount)/100)
	if _, err := s.smsGateway.SendSMS(user.Phone, message); err != nil {
		slog.Error("Failed to send winner SMS", "error", err, "winnerId", winner.ID.Hex())
		return
	}
	if err := s.winnerRepo.MarkNotified(ctx, winner.ID, time.Now()); err != nil {
		slog.Error("Failed to mark winner notified", "error", err, "winnerId", winner.ID.Hex())
	}
}
