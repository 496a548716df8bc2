package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JackpotDraw records one executed draw for a pool. Immutable once created.
// RandomSeed is persisted so the winner selection can be replayed from
// (RandomSeed, TotalTickets) for audit.
type JackpotDraw struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PoolID          primitive.ObjectID `bson:"poolId" json:"poolId"`
	DrawNumber      int64              `bson:"drawNumber" json:"drawNumber"`
	TotalPoolAmount int64              `bson:"totalPoolAmount" json:"totalPoolAmount"` // pool amount snapshotted at draw time
	TotalTickets    int64              `bson:"totalTickets" json:"totalTickets"`       // sample space size
	TotalWinners    int                `bson:"totalWinners" json:"totalWinners"`
	RandomSeed      int64              `bson:"randomSeed" json:"randomSeed"`
	DrawnAt         time.Time          `bson:"drawnAt" json:"drawnAt"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// DrawWithWinners bundles a draw with its winner records for history reads.
type DrawWithWinners struct {
	Draw    *JackpotDraw     `json:"draw"`
	Winners []*JackpotWinner `json:"winners"`
}
