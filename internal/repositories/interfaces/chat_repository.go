package interfaces

import (
	"context"

	"astro-online/internal/models"
	"astro-online/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatRepository interface {
	// GetOrCreateRoom resolves the single room for a pair of participants,
	// creating it on first contact.
	GetOrCreateRoom(ctx context.Context, a, b primitive.ObjectID) (*models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID primitive.ObjectID) (*models.ChatRoom, error)
	GetRoomsForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatRoom, int64, error)

	InsertMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, roomID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatMessage, int64, error)
	LastMessage(ctx context.Context, roomID primitive.ObjectID) (*models.ChatMessage, error)

	// MarkRead flags the reader's unread messages in the room as read and
	// resets their unread counter.
	MarkRead(ctx context.Context, roomID, readerID primitive.ObjectID) error
}
