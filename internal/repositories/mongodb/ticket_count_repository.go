package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketCountRepository implements the repositories.TicketCountRepository interface
type TicketCountRepository struct {
	collection *mongo.Collection
}

// NewTicketCountRepository creates a new TicketCountRepository
func NewTicketCountRepository(db *mongo.Database) repositories.TicketCountRepository {
	return &TicketCountRepository{
		collection: db.Collection("player_ticket_counts"),
	}
}

// Increment upserts the aggregate for (pool, user, cycle) by delta
func (r *TicketCountRepository) Increment(ctx context.Context, poolID, userID primitive.ObjectID, drawNumber, delta int64, at time.Time) error {
	filter := bson.M{"poolId": poolID, "userId": userID, "drawNumber": drawNumber}
	update := bson.M{
		"$inc": bson.M{"totalTickets": delta},
		"$set": bson.M{"lastTicketAt": at},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Find returns the aggregate for (pool, user, cycle)
func (r *TicketCountRepository) Find(ctx context.Context, poolID, userID primitive.ObjectID, drawNumber int64) (*models.PlayerTicketCount, error) {
	filter := bson.M{"poolId": poolID, "userId": userID, "drawNumber": drawNumber}
	var count models.PlayerTicketCount
	err := r.collection.FindOne(ctx, filter).Decode(&count)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// Set overwrites the aggregate total, used by reconciliation to correct drift
func (r *TicketCountRepository) Set(ctx context.Context, poolID, userID primitive.ObjectID, drawNumber, total int64) error {
	filter := bson.M{"poolId": poolID, "userId": userID, "drawNumber": drawNumber}
	update := bson.M{"$set": bson.M{"totalTickets": total}}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// FindByPoolCycle returns all aggregates for one cycle of a pool
func (r *TicketCountRepository) FindByPoolCycle(ctx context.Context, poolID primitive.ObjectID, drawNumber int64) ([]*models.PlayerTicketCount, error) {
	filter := bson.M{"poolId": poolID, "drawNumber": drawNumber}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []*models.PlayerTicketCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []*models.PlayerTicketCount{}
	}
	return counts, nil
}
