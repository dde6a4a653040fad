package interfaces

import (
	"context"

	"astro-online/internal/models"
	"astro-online/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AstrologerRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, astrologer *models.Astrologer) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Astrologer, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Astrologer, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Presence flags
	SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error
	SetBusy(ctx context.Context, id primitive.ObjectID, busy bool) error

	// Listing
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error)
	ListOnline(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error)
	ListByCategory(ctx context.Context, category string, params *utils.PaginationParams) ([]*models.Astrologer, int64, error)

	// Statistics
	IncrementTotalOrders(ctx context.Context, id primitive.ObjectID) error
}
