package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message" validate:"required"`
	Data      map[string]string  `json:"data,omitempty" bson:"data,omitempty"`
	IsRead    bool               `json:"is_read" bson:"is_read" default:"false"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
