package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType classifies wallet ledger entries
type TransactionType string

const (
	TransactionTypeJackpotPrize TransactionType = "JACKPOT_PRIZE"
	TransactionTypeWager        TransactionType = "WAGER"
)

// WalletTransaction is an entry in the balance ledger. Reference carries the
// idempotency key (unique index): a jackpot credit uses the winner id, so a
// retried credit finds the existing transaction instead of paying twice.
type WalletTransaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      TransactionType    `bson:"type" json:"type"`
	Amount    int64              `bson:"amount" json:"amount"` // minor units, positive = credit
	Currency  string             `bson:"currency" json:"currency"`
	Reference string             `bson:"reference" json:"reference"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
