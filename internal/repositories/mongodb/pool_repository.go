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

// PoolRepository implements the repositories.PoolRepository interface
type PoolRepository struct {
	collection *mongo.Collection
}

// NewPoolRepository creates a new PoolRepository
func NewPoolRepository(db *mongo.Database) repositories.PoolRepository {
	return &PoolRepository{
		collection: db.Collection("jackpot_pools"),
	}
}

// Create creates a new jackpot pool
func (r *PoolRepository) Create(ctx context.Context, pool *models.JackpotPool) error {
	pool.CreatedAt = time.Now()
	pool.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, pool)
	if err != nil {
		return err
	}
	pool.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a pool by ID
func (r *PoolRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.JackpotPool, error) {
	var pool models.JackpotPool
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pool)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &pool, nil
}

// FindAll finds all pools
func (r *PoolRepository) FindAll(ctx context.Context) ([]*models.JackpotPool, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pools []*models.JackpotPool
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, err
	}
	if pools == nil {
		pools = []*models.JackpotPool{}
	}
	return pools, nil
}

// FindByStatus finds pools by status
func (r *PoolRepository) FindByStatus(ctx context.Context, status models.PoolStatus) ([]*models.JackpotPool, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pools []*models.JackpotPool
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, err
	}
	if pools == nil {
		pools = []*models.JackpotPool{}
	}
	return pools, nil
}

// UpdateTiers replaces the prize tier configuration of a pool
func (r *PoolRepository) UpdateTiers(ctx context.Context, id primitive.ObjectID, tiers []models.PrizeTier) error {
	update := bson.M{"$set": bson.M{"tiers": tiers, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// TransitionStatus performs an atomic compare-and-swap on the pool status.
// The status filter is what makes two concurrent draw triggers mutually
// exclusive: only one FindOneAndUpdate can match.
func (r *PoolRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.PoolStatus) (*models.JackpotPool, error) {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	if to == models.PoolStatusDrawing {
		set["drawStartedAt"] = time.Now()
	} else {
		set["drawStartedAt"] = time.Time{}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pool models.JackpotPool
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		opts,
	).Decode(&pool)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrStatusConflict
		}
		return nil, err
	}
	return &pool, nil
}

// ReserveTickets atomically reserves a contiguous range of ticket numbers.
// The status guard and the counter increment are one document update, so a
// draw can never slide in between the check and the reservation.
func (r *PoolRepository) ReserveTickets(ctx context.Context, id primitive.ObjectID, count int64) (*models.JackpotPool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pool models.JackpotPool
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.PoolStatusActive},
		bson.M{
			"$inc": bson.M{"ticketCounter": count},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		opts,
	).Decode(&pool)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrPoolNotActive
		}
		return nil, err
	}
	return &pool, nil
}

// AddContribution accrues a contribution while the pool is ACTIVE or DRAWING
func (r *PoolRepository) AddContribution(ctx context.Context, id primitive.ObjectID, amount int64) error {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []models.PoolStatus{models.PoolStatusActive, models.PoolStatusDrawing}},
	}
	update := bson.M{
		"$inc": bson.M{"currentAmount": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrPoolNotActive
	}
	return nil
}

// CompleteDraw commits the pool side of a draw. Contributions that accrued
// while the pool was DRAWING survive: the amount is decremented by what was
// distributed and re-seeded, not overwritten.
func (r *PoolRepository) CompleteDraw(ctx context.Context, id primitive.ObjectID, distributedAmount, seedAmount int64, nextDrawAt time.Time) error {
	filter := bson.M{"_id": id, "status": models.PoolStatusDrawing}
	update := bson.M{
		"$inc": bson.M{
			"currentAmount": seedAmount - distributedAmount,
			"drawNumber":    int64(1),
		},
		"$set": bson.M{
			"status":        models.PoolStatusActive,
			"ticketCounter": int64(0),
			"nextDrawAt":    nextDrawAt,
			"drawStartedAt": time.Time{},
			"updatedAt":     time.Now(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrStatusConflict
	}
	return nil
}

// FindDue finds ACTIVE pools whose next draw time has passed
func (r *PoolRepository) FindDue(ctx context.Context, now time.Time) ([]*models.JackpotPool, error) {
	filter := bson.M{
		"status":     models.PoolStatusActive,
		"nextDrawAt": bson.M{"$lte": now},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pools []*models.JackpotPool
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, err
	}
	if pools == nil {
		pools = []*models.JackpotPool{}
	}
	return pools, nil
}

// FindStuckDrawing finds pools left in DRAWING since before the cutoff
func (r *PoolRepository) FindStuckDrawing(ctx context.Context, cutoff time.Time) ([]*models.JackpotPool, error) {
	filter := bson.M{
		"status":        models.PoolStatusDrawing,
		"drawStartedAt": bson.M{"$gt": time.Time{}, "$lt": cutoff},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pools []*models.JackpotPool
	if err := cursor.All(ctx, &pools); err != nil {
		return nil, err
	}
	if pools == nil {
		pools = []*models.JackpotPool{}
	}
	return pools, nil
}
