package interfaces

import (
	"context"

	"astro-online/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletRepository manages one wallet collection. The customer and astrologer
// ledgers are separate collections behind two instances of this interface.
//
// Debit and Credit honor transactional contexts: pass a mongo.SessionContext
// and the balance movement joins the surrounding transaction.
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Wallet, error)

	// Debit atomically subtracts amount when the balance covers it.
	// Returns models.ErrInsufficientFunds otherwise; the balance never
	// goes negative.
	Debit(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*models.Wallet, error)

	// DebitUpTo subtracts min(amount, balance) and returns the amount
	// actually taken.
	DebitUpTo(ctx context.Context, ownerID primitive.ObjectID, amount float64) (float64, error)

	Credit(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*models.Wallet, error)

	SetActive(ctx context.Context, ownerID primitive.ObjectID, active bool) error
}
