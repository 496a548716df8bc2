package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JackpotWinner represents one winning ticket in a draw.
// PrizeCredited transitions false -> true exactly once; CreditedTransactionID
// is set if and only if PrizeCredited is true.
type JackpotWinner struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID                primitive.ObjectID `bson:"drawId" json:"drawId"`
	PoolID                primitive.ObjectID `bson:"poolId" json:"poolId"`
	UserID                primitive.ObjectID `bson:"userId" json:"userId"`
	TierName              string             `bson:"tierName" json:"tierName"`
	TierOrder             int                `bson:"tierOrder" json:"tierOrder"`
	WinningTicketNumber   int64              `bson:"winningTicketNumber" json:"winningTicketNumber"`
	TicketsHeld           int64              `bson:"ticketsHeld" json:"ticketsHeld"`
	TotalTicketsInPool    int64              `bson:"totalTicketsInPool" json:"totalTicketsInPool"`
	WinOddsPercentage     float64            `bson:"winOddsPercentage" json:"winOddsPercentage"`
	PrizeAmount           int64              `bson:"prizeAmount" json:"prizeAmount"`
	Currency              string             `bson:"currency" json:"currency"`
	PrizeCredited         bool               `bson:"prizeCredited" json:"prizeCredited"`
	CreditedTransactionID string             `bson:"creditedTransactionId,omitempty" json:"creditedTransactionId,omitempty"`
	NotifiedAt            time.Time          `bson:"notifiedAt,omitempty" json:"notifiedAt,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}
