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

// WinnerRepository implements the repositories.WinnerRepository interface
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) repositories.WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("jackpot_winners"),
	}
}

// CreateMany inserts winner records for a draw
func (r *WinnerRepository) CreateMany(ctx context.Context, winners []*models.JackpotWinner) error {
	if len(winners) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(winners))
	now := time.Now()
	for _, w := range winners {
		w.CreatedAt = now
		w.UpdatedAt = now
		docs = append(docs, w)
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		winners[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// FindByID finds a winner by ID
func (r *WinnerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.JackpotWinner, error) {
	var winner models.JackpotWinner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&winner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &winner, nil
}

// FindByDrawID finds all winners of a draw, ordered by tier
func (r *WinnerRepository) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.JackpotWinner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "tierOrder", Value: 1}, {Key: "winningTicketNumber", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"drawId": drawID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.JackpotWinner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []*models.JackpotWinner{}
	}
	return winners, nil
}

// FindByUserID finds a user's wins, newest first
func (r *WinnerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.JackpotWinner, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.JackpotWinner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []*models.JackpotWinner{}
	}
	return winners, nil
}

// ClaimCredit flips prizeCredited false -> true exactly once. The filter on
// prizeCredited makes concurrent crediting of the same winner race-safe: only
// one caller matches.
func (r *WinnerRepository) ClaimCredit(ctx context.Context, id primitive.ObjectID, transactionID string) (bool, error) {
	filter := bson.M{"_id": id, "prizeCredited": false}
	update := bson.M{"$set": bson.M{
		"prizeCredited":         true,
		"creditedTransactionId": transactionID,
		"updatedAt":             time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// DeleteByDrawID removes all winners of a draw
func (r *WinnerRepository) DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"drawId": drawID})
	return err
}

// MarkNotified records when the winner SMS went out
func (r *WinnerRepository) MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"notifiedAt": at, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
