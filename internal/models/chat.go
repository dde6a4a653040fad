package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRoom is a durable pairing of two actors. Unread counters and last-seen
// timestamps are tracked per side; side A is always the participant with the
// lower object id so a pair resolves to exactly one room.
type ChatRoom struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ParticipantA primitive.ObjectID `json:"participant_a" bson:"participant_a" validate:"required"`
	ParticipantB primitive.ObjectID `json:"participant_b" bson:"participant_b" validate:"required"`
	UnreadCountA int                `json:"unread_count_a" bson:"unread_count_a" default:"0"`
	UnreadCountB int                `json:"unread_count_b" bson:"unread_count_b" default:"0"`
	LastSeenA    time.Time          `json:"last_seen_a" bson:"last_seen_a"`
	LastSeenB    time.Time          `json:"last_seen_b" bson:"last_seen_b"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

type ChatMessage struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RoomID     primitive.ObjectID `json:"room_id" bson:"room_id" validate:"required"`
	SenderID   primitive.ObjectID `json:"sender_id" bson:"sender_id" validate:"required"`
	ReceiverID primitive.ObjectID `json:"receiver_id" bson:"receiver_id" validate:"required"`
	Content    string             `json:"content" bson:"content" validate:"required"`
	Metadata   map[string]string  `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsRead     bool               `json:"is_read" bson:"is_read" default:"false"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
