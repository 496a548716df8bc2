package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoolStatus represents the lifecycle state of a jackpot pool
type PoolStatus string

const (
	PoolStatusActive  PoolStatus = "ACTIVE"
	PoolStatusDrawing PoolStatus = "DRAWING"
	PoolStatusPaused  PoolStatus = "PAUSED"
)

// PoolType determines the draw cadence of a pool
type PoolType string

const (
	PoolTypeDaily   PoolType = "DAILY"
	PoolTypeWeekly  PoolType = "WEEKLY"
	PoolTypeMonthly PoolType = "MONTHLY"
)

// PrizeTier defines one prize bracket within a pool. Tiers are embedded in the
// pool document and ordered by TierOrder (lower = bigger prize).
type PrizeTier struct {
	Name         string `bson:"name" json:"name"` // e.g., "GRAND", "MAJOR", "MINOR"
	TierOrder    int    `bson:"tierOrder" json:"tierOrder"`
	WinnerCount  int    `bson:"winnerCount" json:"winnerCount"`
	PoolShareBps int64  `bson:"poolShareBps" json:"poolShareBps"` // share of the pool in basis points; tiers sum to <= 10000
}

// JackpotPool represents a progressive jackpot pool. All monetary amounts are
// integer minor units (kobo/cents) to keep prize arithmetic exact.
type JackpotPool struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                string             `bson:"name" json:"name"`
	PoolType            PoolType           `bson:"poolType" json:"poolType"`
	Currency            string             `bson:"currency" json:"currency"`
	CurrentAmount       int64              `bson:"currentAmount" json:"currentAmount"`
	SeedAmount          int64              `bson:"seedAmount" json:"seedAmount"`
	ContributionRateBps int64              `bson:"contributionRateBps" json:"contributionRateBps"` // fraction of each wager routed into the pool, in basis points
	TicketCost          int64              `bson:"ticketCost" json:"ticketCost"`                   // wager amount that earns one ticket
	Status              PoolStatus         `bson:"status" json:"status"`
	DrawNumber          int64              `bson:"drawNumber" json:"drawNumber"`       // current cycle; incremented when a draw commits
	TicketCounter       int64              `bson:"ticketCounter" json:"ticketCounter"` // dense per-cycle ticket number counter
	NextDrawAt          time.Time          `bson:"nextDrawAt" json:"nextDrawAt"`
	DrawStartedAt       time.Time          `bson:"drawStartedAt,omitempty" json:"drawStartedAt,omitempty"` // set while Status == DRAWING, watchdog input
	Tiers               []PrizeTier        `bson:"tiers" json:"tiers"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PoolStatusResponse is the public read model for a pool: current amount, time
// to the next draw and the prize structure.
type PoolStatusResponse struct {
	PoolID        primitive.ObjectID `json:"poolId"`
	Name          string             `json:"name"`
	PoolType      PoolType           `json:"poolType"`
	Currency      string             `json:"currency"`
	CurrentAmount int64              `json:"currentAmount"`
	Status        PoolStatus         `json:"status"`
	DrawNumber    int64              `json:"drawNumber"`
	NextDrawAt    time.Time          `json:"nextDrawAt"`
	NextDrawIn    int64              `json:"nextDrawInSeconds"`
	Tiers         []PrizeTier        `json:"tiers"`
}
