package mongodb

import (
	"context"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PendingTicketRepository implements the repositories.PendingTicketRepository interface
type PendingTicketRepository struct {
	collection *mongo.Collection
}

// NewPendingTicketRepository creates a new PendingTicketRepository
func NewPendingTicketRepository(db *mongo.Database) repositories.PendingTicketRepository {
	return &PendingTicketRepository{
		collection: db.Collection("pending_tickets"),
	}
}

// Enqueue queues a wager for issuance after the current draw closes
func (r *PendingTicketRepository) Enqueue(ctx context.Context, pending *models.PendingTicket) error {
	if pending.QueuedAt.IsZero() {
		pending.QueuedAt = time.Now()
	}
	res, err := r.collection.InsertOne(ctx, pending)
	if err != nil {
		return err
	}
	pending.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Drain returns and removes all queued entries for a pool in FIFO order
func (r *PendingTicketRepository) Drain(ctx context.Context, poolID primitive.ObjectID) ([]*models.PendingTicket, error) {
	filter := bson.M{"poolId": poolID}
	opts := options.Find().SetSort(bson.M{"queuedAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pending []*models.PendingTicket
	if err := cursor.All(ctx, &pending); err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return []*models.PendingTicket{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	_, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return pending, nil
}
