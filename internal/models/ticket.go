package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JackpotTicket is an immutable ledger entry: one unit of chance earned by
// wager activity. TicketNumber is dense and strictly increasing within
// (pool, drawNumber); the counter restarts at 1 each cycle so the draw's
// sample space is exactly [1, totalTickets].
type JackpotTicket struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PoolID              primitive.ObjectID `bson:"poolId" json:"poolId"`
	UserID              primitive.ObjectID `bson:"userId" json:"userId"`
	DrawNumber          int64              `bson:"drawNumber" json:"drawNumber"` // cycle the ticket belongs to
	TicketNumber        int64              `bson:"ticketNumber" json:"ticketNumber"`
	WagerAmount         int64              `bson:"wagerAmount" json:"wagerAmount"`
	SourceTransactionID string             `bson:"sourceTransactionId" json:"sourceTransactionId"`
	DrawEligible        bool               `bson:"drawEligible" json:"drawEligible"`
	EarnedAt            time.Time          `bson:"earnedAt" json:"earnedAt"`
}

// PendingTicket queues wager activity that arrived while a pool was DRAWING.
// Pending entries are drained into the next cycle once the draw commits, so
// the snapshot a draw selects from is never moved under it.
type PendingTicket struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PoolID              primitive.ObjectID `bson:"poolId" json:"poolId"`
	UserID              primitive.ObjectID `bson:"userId" json:"userId"`
	WagerAmount         int64              `bson:"wagerAmount" json:"wagerAmount"`
	SourceTransactionID string             `bson:"sourceTransactionId" json:"sourceTransactionId"`
	QueuedAt            time.Time          `bson:"queuedAt" json:"queuedAt"`
}

// PlayerTicketCount is the derived per-(pool, user, cycle) aggregate used for
// odds display. The ticket ledger stays authoritative; a reconciliation job
// corrects any drift.
type PlayerTicketCount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PoolID       primitive.ObjectID `bson:"poolId" json:"poolId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	DrawNumber   int64              `bson:"drawNumber" json:"drawNumber"`
	TotalTickets int64              `bson:"totalTickets" json:"totalTickets"`
	LastTicketAt time.Time          `bson:"lastTicketAt" json:"lastTicketAt"`
}

// TicketOddsResponse is the public read model for a player's chances in the
// current cycle of a pool.
type TicketOddsResponse struct {
	PoolID         primitive.ObjectID `json:"poolId"`
	DrawNumber     int64              `json:"drawNumber"`
	TicketsHeld    int64              `json:"ticketsHeld"`
	TotalTickets   int64              `json:"totalTickets"`
	OddsPercentage float64            `json:"oddsPercentage"`
}
