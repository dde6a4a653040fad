package interfaces

import (
	"context"

	"astro-online/internal/models"
	"astro-online/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.WalletTransaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.WalletTransaction, error)
	GetByReference(ctx context.Context, reference string) (*models.WalletTransaction, error)

	// ListByUser returns movements where the user is either side.
	ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.WalletTransaction, int64, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*models.WalletTransaction, error)
}
