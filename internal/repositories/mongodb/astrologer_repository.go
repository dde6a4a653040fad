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
)

type astrologerRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewAstrologerRepository(db *mongo.Database, cache CacheService) interfaces.AstrologerRepository {
	return &astrologerRepository{
		collection: db.Collection("astrologers"),
		cache:      cache,
	}
}

func (r *astrologerRepository) Create(ctx context.Context, astrologer *models.Astrologer) error {
	astrologer.ID = primitive.NewObjectID()
	astrologer.CreatedAt = time.Now()
	astrologer.UpdatedAt = time.Now()
	astrologer.IsActive = true

	_, err := r.collection.InsertOne(ctx, astrologer)
	if err != nil {
		return fmt.Errorf("failed to create astrologer: %w", err)
	}

	return nil
}

func (r *astrologerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Astrologer, error) {
	if r.cache != nil {
		var cached models.Astrologer
		if err := r.cache.Get(ctx, "astrologer:"+id.Hex(), &cached); err == nil {
			return &cached, nil
		}
	}

	var astrologer models.Astrologer
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&astrologer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get astrologer: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, "astrologer:"+id.Hex(), astrologer, defaultCacheTTL)
	}

	return &astrologer, nil
}

func (r *astrologerRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Astrologer, error) {
	var astrologer models.Astrologer
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "is_deleted": false}).Decode(&astrologer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get astrologer by user: %w", err)
	}

	return &astrologer, nil
}

func (r *astrologerRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update astrologer: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *astrologerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{
		"is_deleted": true,
		"is_active":  false,
		"is_online":  false,
	})
}

func (r *astrologerRepository) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	updates := map[string]interface{}{"is_online": online}
	if !online {
		// Going offline clears the busy flag as well; the session table
		// remains the source of truth for active consultations.
		updates["is_busy"] = false
	}
	return r.Update(ctx, id, updates)
}

func (r *astrologerRepository) SetBusy(ctx context.Context, id primitive.ObjectID, busy bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_busy": busy})
}

func (r *astrologerRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	return r.findAstrologers(ctx, bson.M{"is_deleted": false, "is_active": true}, params)
}

func (r *astrologerRepository) ListOnline(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	filter := bson.M{
		"is_deleted": false,
		"is_active":  true,
		"is_online":  true,
	}
	return r.findAstrologers(ctx, filter, params)
}

func (r *astrologerRepository) ListByCategory(ctx context.Context, category string, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	filter := bson.M{
		"is_deleted": false,
		"is_active":  true,
		"category":   category,
	}
	return r.findAstrologers(ctx, filter, params)
}

func (r *astrologerRepository) IncrementTotalOrders(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"total_orders": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment total orders: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *astrologerRepository) findAstrologers(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count astrologers: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list astrologers: %w", err)
	}
	defer cursor.Close(ctx)

	var astrologers []*models.Astrologer
	if err := cursor.All(ctx, &astrologers); err != nil {
		return nil, 0, fmt.Errorf("failed to decode astrologers: %w", err)
	}

	return astrologers, total, nil
}

func (r *astrologerRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		r.cache.Delete(ctx, "astrologer:"+id.Hex())
	}
}
