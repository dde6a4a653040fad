package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeChat      TransactionType = "chat"
	TransactionTypeAudioCall TransactionType = "audio_call"
	TransactionTypeVideoCall TransactionType = "video_call"
	TransactionTypeTopUp     TransactionType = "top_up"
	TransactionTypeSendMoney TransactionType = "send_money"

	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// WalletTransaction is an immutable ledger movement record. Rows are created
// exactly once by the settlement engine or the wallet service and never
// mutated afterwards.
type WalletTransaction struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Amount           float64             `json:"amount" bson:"amount" validate:"required"`
	Type             TransactionType     `json:"type" bson:"type" validate:"required"`
	IsCredit         bool                `json:"is_credit" bson:"is_credit"`
	Status           TransactionStatus   `json:"status" bson:"status" default:"success"`
	FromUserID       *primitive.ObjectID `json:"from_user_id" bson:"from_user_id"`
	ToUserID         *primitive.ObjectID `json:"to_user_id" bson:"to_user_id"`
	CounterpartyName string              `json:"counterparty_name" bson:"counterparty_name"`
	SessionID        *primitive.ObjectID `json:"session_id" bson:"session_id"`
	Duration         string              `json:"duration" bson:"duration"` // HH:MM:SS, zero for non-session movements
	Reference        string              `json:"reference" bson:"reference"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// TransactionTypeForSession maps a session type to its ledger transaction type.
func TransactionTypeForSession(t SessionType) TransactionType {
	switch t {
	case SessionTypeAudioCall:
		return TransactionTypeAudioCall
	case SessionTypeVideoCall:
		return TransactionTypeVideoCall
	default:
		return TransactionTypeChat
	}
}
