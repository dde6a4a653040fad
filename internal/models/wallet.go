package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet is one actor's ledger balance. Customer and astrologer wallets live
// in separate collections but share this shape; OwnerID is the owning user's
// id for customers and the astrologer document id for astrologers.
type Wallet struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID   primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	Balance   float64            `json:"balance" bson:"balance" default:"0"`
	Currency  string             `json:"currency" bson:"currency" default:"INR"`
	IsActive  bool               `json:"is_active" bson:"is_active" default:"true"`
	IsDeleted bool               `json:"is_deleted" bson:"is_deleted" default:"false"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
