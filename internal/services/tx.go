package services

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs a function inside a storage transaction. Satisfied by
// *database.MongoDB.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error)
}
