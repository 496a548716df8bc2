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

// WalletRepository implements the repositories.WalletRepository interface.
// The wallet_transactions collection carries a unique index on "reference";
// that index is what makes CreateIfAbsent idempotent.
type WalletRepository struct {
	collection *mongo.Collection
}

// NewWalletRepository creates a new WalletRepository and ensures the unique
// reference index exists.
func NewWalletRepository(db *mongo.Database) repositories.WalletRepository {
	collection := db.Collection("wallet_transactions")
	_, _ = collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &WalletRepository{collection: collection}
}

// CreateIfAbsent inserts the transaction unless its reference already exists.
// On a duplicate key the existing transaction is returned with created=false.
func (r *WalletRepository) CreateIfAbsent(ctx context.Context, tx *models.WalletTransaction) (*models.WalletTransaction, bool, error) {
	tx.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, findErr := r.FindByReference(ctx, tx.Reference)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	tx.ID = res.InsertedID.(primitive.ObjectID)
	return tx, true, nil
}

// FindByReference finds a transaction by its idempotency reference
func (r *WalletRepository) FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	var tx models.WalletTransaction
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByUser finds a user's transactions, newest first
func (r *WalletRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.WalletTransaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
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

	var txs []*models.WalletTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*models.WalletTransaction{}
	}
	return txs, nil
}
