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

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("jackpot_draws"),
	}
}

// Create creates a new draw record
func (r *DrawRepository) Create(ctx context.Context, draw *models.JackpotDraw) error {
	draw.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		return err
	}
	draw.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a draw by ID
func (r *DrawRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.JackpotDraw, error) {
	var draw models.JackpotDraw
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// FindByPool finds a pool's draws, newest first
func (r *DrawRepository) FindByPool(ctx context.Context, poolID primitive.ObjectID, page, limit int) ([]*models.JackpotDraw, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"drawnAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"poolId": poolID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.JackpotDraw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.JackpotDraw{}
	}
	return draws, nil
}

// Delete removes a draw record
func (r *DrawRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindLatestByPool finds the most recent draw of a pool
func (r *DrawRepository) FindLatestByPool(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotDraw, error) {
	opts := options.FindOne().SetSort(bson.M{"drawnAt": -1})
	var draw models.JackpotDraw
	err := r.collection.FindOne(ctx, bson.M{"poolId": poolID}, opts).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &draw, nil
}
