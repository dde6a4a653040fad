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

type chatRepository struct {
	rooms    *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepository(db *mongo.Database) interfaces.ChatRepository {
	return &chatRepository{
		rooms:    db.Collection("chat_rooms"),
		messages: db.Collection("chat_messages"),
	}
}

// orderPair puts the lower object id first so a participant pair always maps
// to the same room document.
func orderPair(a, b primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if a.Hex() > b.Hex() {
		return b, a
	}
	return a, b
}

func (r *chatRepository) GetOrCreateRoom(ctx context.Context, a, b primitive.ObjectID) (*models.ChatRoom, error) {
	sideA, sideB := orderPair(a, b)

	filter := bson.M{"participant_a": sideA, "participant_b": sideB}
	update := bson.M{
		"$setOnInsert": bson.M{
			"participant_a":  sideA,
			"participant_b":  sideB,
			"unread_count_a": 0,
			"unread_count_b": 0,
			"created_at":     time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var room models.ChatRoom
	err := r.rooms.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create chat room: %w", err)
	}

	return &room, nil
}

func (r *chatRepository) GetRoom(ctx context.Context, roomID primitive.ObjectID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.rooms.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}

	return &room, nil
}

func (r *chatRepository) GetRoomsForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatRoom, int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"participant_a": userID},
			{"participant_b": userID},
		},
	}

	total, err := r.rooms.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count chat rooms: %w", err)
	}

	cursor, err := r.rooms.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*models.ChatRoom
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, 0, fmt.Errorf("failed to decode chat rooms: %w", err)
	}

	return rooms, total, nil
}

func (r *chatRepository) InsertMessage(ctx context.Context, message *models.ChatMessage) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()

	_, err := r.messages.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	// Bump the receiver's unread counter on their side of the room.
	room, err := r.GetRoom(ctx, message.RoomID)
	if err != nil {
		return err
	}

	counter := "unread_count_a"
	if room.ParticipantB == message.ReceiverID {
		counter = "unread_count_b"
	}

	_, err = r.rooms.UpdateOne(ctx,
		bson.M{"_id": message.RoomID},
		bson.M{"$inc": bson.M{counter: 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to bump unread counter: %w", err)
	}

	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, roomID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatMessage, int64, error) {
	filter := bson.M{"room_id": roomID}

	total, err := r.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	cursor, err := r.messages.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, 0, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, total, nil
}

func (r *chatRepository) LastMessage(ctx context.Context, roomID primitive.ObjectID) (*models.ChatMessage, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var message models.ChatMessage
	err := r.messages.FindOne(ctx, bson.M{"room_id": roomID}, opts).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get last message: %w", err)
	}

	return &message, nil
}

func (r *chatRepository) MarkRead(ctx context.Context, roomID, readerID primitive.ObjectID) error {
	_, err := r.messages.UpdateMany(ctx,
		bson.M{"room_id": roomID, "receiver_id": readerID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	counter := "unread_count_a"
	lastSeen := "last_seen_a"
	if room.ParticipantB == readerID {
		counter = "unread_count_b"
		lastSeen = "last_seen_b"
	}

	_, err = r.rooms.UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$set": bson.M{counter: 0, lastSeen: time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread counter: %w", err)
	}

	return nil
}
