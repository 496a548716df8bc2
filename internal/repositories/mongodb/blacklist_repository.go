package mongodb

import (
	"context"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BlacklistRepository implements the repositories.BlacklistRepository interface
type BlacklistRepository struct {
	collection *mongo.Collection
}

// NewBlacklistRepository creates a new BlacklistRepository
func NewBlacklistRepository(db *mongo.Database) repositories.BlacklistRepository {
	return &BlacklistRepository{
		collection: db.Collection("blacklist"),
	}
}

// IsBlacklisted checks whether a user is excluded from winning
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add adds a user to the blacklist
func (r *BlacklistRepository) Add(ctx context.Context, entry *models.BlacklistEntry) error {
	entry.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	entry.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Remove removes a user from the blacklist
func (r *BlacklistRepository) Remove(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// FindAll returns all blacklist entries
func (r *BlacklistRepository) FindAll(ctx context.Context) ([]*models.BlacklistEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.BlacklistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.BlacklistEntry{}
	}
	return entries, nil
}
