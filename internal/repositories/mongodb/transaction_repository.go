package mongodb

import (
	"context"
	"fmt"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("wallet_transactions"),
	}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.WalletTransaction) error {
	txn.ID = primitive.NewObjectID()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = time.Now()
	if txn.Status == "" {
		txn.Status = models.TransactionStatusSuccess
	}
	if txn.Reference == "" {
		txn.Reference = utils.GenerateTransactionReference()
	}

	_, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}

	return &txn, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.WalletTransaction, int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"from_user_id": userID},
			{"to_user_id": userID},
		},
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.WalletTransaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txns, total, nil
}

func (r *transactionRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*models.WalletTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list session transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.WalletTransaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txns, nil
}
