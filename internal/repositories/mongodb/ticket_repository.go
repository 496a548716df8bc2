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

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("jackpot_tickets"),
	}
}

// CreateMany inserts a batch of tickets into the ledger
func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.JackpotTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(tickets))
	now := time.Now()
	for _, t := range tickets {
		if t.EarnedAt.IsZero() {
			t.EarnedAt = now
		}
		docs = append(docs, t)
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		tickets[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// CountEligible counts eligible tickets for one cycle of a pool
func (r *TicketRepository) CountEligible(ctx context.Context, poolID primitive.ObjectID, drawNumber int64) (int64, error) {
	filter := bson.M{
		"poolId":       poolID,
		"drawNumber":   drawNumber,
		"drawEligible": true,
	}
	return r.collection.CountDocuments(ctx, filter)
}

// CountEligibleByUser counts one user's eligible tickets for a cycle
func (r *TicketRepository) CountEligibleByUser(ctx context.Context, poolID primitive.ObjectID, drawNumber int64, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"poolId":       poolID,
		"drawNumber":   drawNumber,
		"userId":       userID,
		"drawEligible": true,
	}
	return r.collection.CountDocuments(ctx, filter)
}

// FindByNumber resolves a ticket number within one cycle of a pool
func (r *TicketRepository) FindByNumber(ctx context.Context, poolID primitive.ObjectID, drawNumber, ticketNumber int64) (*models.JackpotTicket, error) {
	filter := bson.M{
		"poolId":       poolID,
		"drawNumber":   drawNumber,
		"ticketNumber": ticketNumber,
	}
	var ticket models.JackpotTicket
	err := r.collection.FindOne(ctx, filter).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// CountsByUser aggregates eligible ticket counts per user for one cycle
func (r *TicketRepository) CountsByUser(ctx context.Context, poolID primitive.ObjectID, drawNumber int64) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"poolId":       poolID,
			"drawNumber":   drawNumber,
			"drawEligible": true,
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$userId",
			"total": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[primitive.ObjectID]int64)
	for cursor.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"_id"`
			Total  int64              `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.UserID] = row.Total
	}
	return counts, cursor.Err()
}

// FindByUser finds a user's tickets in a pool, newest first
func (r *TicketRepository) FindByUser(ctx context.Context, poolID, userID primitive.ObjectID, page, limit int) ([]*models.JackpotTicket, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	filter := bson.M{"poolId": poolID, "userId": userID}
	opts := options.Find().
		SetSort(bson.M{"earnedAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.JackpotTicket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*models.JackpotTicket{}
	}
	return tickets, nil
}
