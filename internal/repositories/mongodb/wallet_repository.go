package mongodb

import (
	"context"
	"fmt"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type walletRepository struct {
	collection *mongo.Collection
}

// NewWalletRepository builds a repository over one wallet collection,
// "user_wallets" for customers or "astrologer_wallets" for astrologers.
func NewWalletRepository(db *mongo.Database, collectionName string) interfaces.WalletRepository {
	return &walletRepository{
		collection: db.Collection(collectionName),
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	wallet.ID = primitive.NewObjectID()
	wallet.CreatedAt = time.Now()
	wallet.UpdatedAt = time.Now()
	wallet.IsActive = true
	if wallet.Currency == "" {
		wallet.Currency = "INR"
	}

	_, err := r.collection.InsertOne(ctx, wallet)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

func (r *walletRepository) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID, "is_deleted": false}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// Debit subtracts amount in a single conditional update. The balance filter
// serializes concurrent debits: of two racing calls only one matches the
// remaining balance, the other sees ErrInsufficientFunds.
func (r *walletRepository) Debit(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	if amount < 0 {
		return nil, fmt.Errorf("debit amount must not be negative")
	}

	filter := bson.M{
		"owner_id":   ownerID,
		"is_deleted": false,
		"is_active":  true,
		"balance":    bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, r.classifyDebitFailure(ctx, ownerID)
		}
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) DebitUpTo(ctx context.Context, ownerID primitive.ObjectID, amount float64) (float64, error) {
	if _, err := r.Debit(ctx, ownerID, amount); err == nil {
		return amount, nil
	} else if err != models.ErrInsufficientFunds {
		return 0, err
	}

	// Balance is short; take whatever is left. Zeroing via conditional
	// update keeps the race window closed: if another writer moves the
	// balance between the read and the update, the filter misses and we
	// retry from the top.
	for {
		current, err := r.GetByOwner(ctx, ownerID)
		if err != nil {
			return 0, err
		}
		if !current.IsActive {
			return 0, models.ErrWalletInactive
		}
		if current.Balance <= 0 {
			return 0, nil
		}

		res, err := r.collection.UpdateOne(ctx,
			bson.M{
				"owner_id":   ownerID,
				"is_deleted": false,
				"is_active":  true,
				"balance":    current.Balance,
			},
			bson.M{
				"$set": bson.M{"balance": 0.0, "updated_at": time.Now()},
			},
		)
		if err != nil {
			return 0, fmt.Errorf("failed to drain wallet: %w", err)
		}
		if res.ModifiedCount == 1 {
			return current.Balance, nil
		}
	}
}

func (r *walletRepository) Credit(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	if amount < 0 {
		return nil, fmt.Errorf("credit amount must not be negative")
	}

	filter := bson.M{
		"owner_id":   ownerID,
		"is_deleted": false,
		"is_active":  true,
	}
	update := bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, r.classifyDebitFailure(ctx, ownerID)
		}
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) SetActive(ctx context.Context, ownerID primitive.ObjectID, active bool) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"owner_id": ownerID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet status: %w", err)
	}
	return nil
}

// classifyDebitFailure distinguishes a missing or inactive wallet from a
// plain shortage after a conditional update matched nothing.
func (r *walletRepository) classifyDebitFailure(ctx context.Context, ownerID primitive.ObjectID) error {
	wallet, err := r.GetByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if !wallet.IsActive {
		return models.ErrWalletInactive
	}
	return models.ErrInsufficientFunds
}
